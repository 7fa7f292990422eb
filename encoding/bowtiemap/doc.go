// Package bowtiemap reads the tab-separated MAP format produced by the bowtie
// short-read aligner.
//
// Each line describes one alignment. The columns are:
//
//   0  read name
//   1  strand, '+' or '-'
//   2  reference name
//   3  0-based offset of the leftmost aligned base on the forward strand
//   4  read sequence
//   5  read qualities
//   6  number of other alignments at the same reference characters
//   7  comma-separated mismatch descriptors, e.g. "3:A>T,15:C>G"; empty if the
//      alignment has no mismatches
//
// Only the read name and the mismatch column are interpreted here. All lines for
// one read are expected to be adjacent, which is how bowtie writes them.
package bowtiemap

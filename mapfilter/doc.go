/*Package mapfilter removes reads from one bowtie MAP file that align worse
  than they do in another.

  Given MAP files A and B, every read of B is written to the output unless the
  read also appears in A with strictly fewer mismatches. A typical use is to
  drop reads that map to the transcriptome (B) worse than to the genome (A).
  Both files are assumed to hold only best-stratum alignments, so every line of
  one read reports the same mismatch count, and all lines of a read are
  adjacent.

  A does not need to fit in memory. It is read in batches of roughly
  Opts.LimitReads distinct reads; B is streamed once per batch. Each pass writes
  reads resolved by the batch straight to the output and the rest to a
  temporary residue file, which becomes the input of the next pass. Reads still
  unresolved after the last batch are appended to the output unchanged.
  Resolved reads leave the residue, so later passes are cheaper.

  By default the output lists the reads kept by the first pass, then those
  kept by the second pass, and so on, followed by the reads A never mentions;
  B's line order is kept within each of these groups. With Opts.KeepOrder,
  kept reads stay in the residue instead, and the output is exactly B minus
  the dropped reads, independent of LimitReads.
*/
package mapfilter

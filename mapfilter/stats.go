package mapfilter

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
)

// BatchStats describes one reference batch and the pass it drove.
type BatchStats struct {
	// RefReads is the number of distinct reads in the batch.
	RefReads int
	PassStats
}

// Stats is returned by Filter.
type Stats struct {
	Batches []BatchStats
	// PassThroughBytes is the size of the residue appended after the last
	// pass, or of the whole second input if there was no batch.
	PassThroughBytes int64
}

// WriteStats writes s as a TSV table with one row per batch, followed by a
// "total" row. The DEFERRED column of the total row is the number of reads
// deferred by the last pass, i.e., the reads passed through unchanged.
func WriteStats(w io.Writer, s Stats) error {
	tw := tsv.NewWriter(w)
	tw.WriteString("#BATCH\tREF_READS\tLINES\tKEPT\tDROPPED\tDEFERRED")
	if err := tw.EndLine(); err != nil {
		return err
	}
	var total BatchStats
	for i, b := range s.Batches {
		tw.WriteString(strconv.Itoa(i))
		writeBatchStats(tw, b)
		if err := tw.EndLine(); err != nil {
			return err
		}
		total.RefReads += b.RefReads
		total.Lines += b.Lines
		total.Kept += b.Kept
		total.Dropped += b.Dropped
		total.Deferred = b.Deferred
	}
	tw.WriteString("total")
	writeBatchStats(tw, total)
	if err := tw.EndLine(); err != nil {
		return err
	}
	return tw.Flush()
}

func writeBatchStats(tw *tsv.Writer, b BatchStats) {
	tw.WriteInt64(int64(b.RefReads))
	tw.WriteInt64(b.Lines)
	tw.WriteInt64(b.Kept)
	tw.WriteInt64(b.Dropped)
	tw.WriteInt64(b.Deferred)
}

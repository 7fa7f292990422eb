package mapfilter

import (
	"bytes"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/readfilter/encoding/bowtiemap"
)

// fate is the decision made for a read from its first line in a pass.
type fate int

const (
	// fateDeferred means the read is not in the current batch. It moves to the
	// residue to be tested against later batches.
	fateDeferred fate = iota
	// fateKept means the read aligns no worse than in the reference.
	fateKept
	// fateDropped means the read has more mismatches than in the reference.
	fateDropped
)

// PassStats counts what one filter pass did. Reads are counted once per
// group of adjacent lines.
type PassStats struct {
	Lines    int64
	Kept     int64
	Dropped  int64
	Deferred int64
}

type passOpts struct {
	col        int
	chunkBytes int
	keepOrder  bool
}

// filterPass streams src and sorts each read into final, residue, or
// nowhere, based on batch. Reads not in batch go to residue. A read in batch
// goes to final if its mismatch count is not larger than the batch's,
// otherwise it is dropped. With keepOrder, kept reads go to residue too.
//
// The decision is made on the first line of each read and applied to all its
// adjacent lines. Writes are issued once per chunk and destination.
func filterPass(batch RefBatch, src io.Reader, final, residue io.Writer, opts passOpts) (PassStats, error) {
	var (
		stats      PassStats
		chunks     = bowtiemap.NewChunkReader(src, opts.chunkBytes)
		name       []byte
		haveName   bool
		cur        fate
		finalBuf   []byte
		residueBuf []byte
	)
	for chunks.Scan() {
		finalBuf, residueBuf = finalBuf[:0], residueBuf[:0]
		for _, line := range chunks.Lines() {
			stats.Lines++
			if n := bowtiemap.ReadName(line); !haveName || !bytes.Equal(n, name) {
				name = append(name[:0], n...)
				haveName = true
				var err error
				if cur, err = decide(batch, line, opts.col); err != nil {
					return stats, err
				}
				switch cur {
				case fateKept:
					stats.Kept++
				case fateDropped:
					stats.Dropped++
				default:
					stats.Deferred++
				}
			}
			switch cur {
			case fateKept:
				if opts.keepOrder {
					residueBuf = appendLine(residueBuf, line)
				} else {
					finalBuf = appendLine(finalBuf, line)
				}
			case fateDeferred:
				residueBuf = appendLine(residueBuf, line)
			}
		}
		if len(finalBuf) > 0 {
			if _, err := final.Write(finalBuf); err != nil {
				return stats, err
			}
		}
		if len(residueBuf) > 0 {
			if _, err := residue.Write(residueBuf); err != nil {
				return stats, err
			}
		}
		log.Debug.Printf("filter pass: %d lines so far", stats.Lines)
	}
	return stats, chunks.Err()
}

func decide(batch RefBatch, line []byte, col int) (fate, error) {
	ref, ok := batch[string(bowtiemap.ReadName(line))]
	if !ok {
		return fateDeferred, nil
	}
	n, err := bowtiemap.Mismatches(line, col)
	if err != nil {
		return fateDropped, err
	}
	if ref >= n {
		return fateKept, nil
	}
	return fateDropped, nil
}

// appendLine appends line to buf, adding a newline if line lacks one, so that
// a file whose last line is unterminated can be followed by more records.
func appendLine(buf, line []byte) []byte {
	buf = append(buf, line...)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		buf = append(buf, '\n')
	}
	return buf
}

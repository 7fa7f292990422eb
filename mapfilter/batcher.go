package mapfilter

import (
	"bytes"
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/readfilter/encoding/bowtiemap"
)

// RefBatch maps a read name to its mismatch count in the reference MAP file.
type RefBatch map[string]int

// RefBatcher reads a MAP file as a sequence of RefBatches. Every batch holds
// roughly Opts.LimitReads reads, and a read name appears in only one batch,
// provided that the lines of each read are adjacent in the file.
//
// Example:
//   b, err := NewRefBatcher(ctx, path, opts)
//   ...
//   for b.Scan() {
//     batch := b.Batch()
//     ...
//   }
//   if err := b.Err(); err != nil {
//     ...
//   }
//   err = b.Close(ctx)
type RefBatcher struct {
	path   string
	in     file.File
	chunks *bowtiemap.ChunkReader
	col    int
	limit  int

	// lastName is the name of the previous line, possibly in an earlier chunk or
	// batch. A line whose name equals lastName is a continuation of the same
	// read and is skipped.
	lastName []byte
	hasLast  bool

	cur   RefBatch
	nCur  int // # of reads appended to cur, including repeats.
	batch RefBatch
	done  bool
	err   error
}

// NewRefBatcher opens the MAP file at path. Compressed files are decompressed
// based on the path suffix. Opts fields MismatchCol, LimitReads and
// ChunkBytes are used.
func NewRefBatcher(ctx context.Context, path string, opts Opts) (*RefBatcher, error) {
	in, r, err := openMAP(ctx, path)
	if err != nil {
		return nil, err
	}
	return &RefBatcher{
		path:   path,
		in:     in,
		chunks: bowtiemap.NewChunkReader(r, opts.ChunkBytes),
		col:    opts.MismatchCol,
		limit:  opts.LimitReads,
	}, nil
}

// openMAP opens a MAP file for reading, uncompressing it if the path has a
// known compression suffix.
func openMAP(ctx context.Context, path string) (file.File, io.Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "open", path)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	return in, r, nil
}

// Scan reads the next batch. It returns false once the file is exhausted or
// an error occurs; Err tells which.
func (b *RefBatcher) Scan() bool {
	if b.err != nil || b.done {
		return false
	}
	for b.chunks.Scan() {
		for _, line := range b.chunks.Lines() {
			if err := b.add(line); err != nil {
				b.err = errors.E(err, b.path)
				return false
			}
		}
		log.Debug.Printf("%s: %d reads pending", b.path, b.nCur)
		if b.nCur > b.limit {
			b.yield()
			return true
		}
	}
	if err := b.chunks.Err(); err != nil {
		b.err = errors.E(err, b.path)
		return false
	}
	b.done = true
	if b.nCur > 0 {
		b.yield()
		return true
	}
	return false
}

func (b *RefBatcher) add(line []byte) error {
	desc, err := bowtiemap.Field(line, b.col)
	if err != nil {
		return err
	}
	name := bowtiemap.ReadName(line)
	if b.hasLast && bytes.Equal(name, b.lastName) {
		return nil
	}
	b.lastName = append(b.lastName[:0], name...)
	b.hasLast = true
	if b.cur == nil {
		b.cur = RefBatch{}
	}
	// The first line seen for a name wins. With adjacent lines per read a name
	// is only added once anyway.
	if _, ok := b.cur[string(name)]; !ok {
		b.cur[string(name)] = bowtiemap.MismatchCount(desc)
	}
	b.nCur++
	return nil
}

func (b *RefBatcher) yield() {
	b.batch, b.cur, b.nCur = b.cur, nil, 0
}

// Batch returns the batch read by the last successful Scan.
func (b *RefBatcher) Batch() RefBatch { return b.batch }

// Err returns the error that stopped Scan, if any.
func (b *RefBatcher) Err() error { return b.err }

// Close closes the underlying file. It must be called exactly once.
func (b *RefBatcher) Close(ctx context.Context) error {
	return b.in.Close(ctx)
}

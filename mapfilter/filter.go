package mapfilter

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// output is the destination of the kept reads. It is open for the whole run.
type output struct {
	f  file.File
	gz *gzip.Writer // nil unless the path ends in .gz
	w  io.Writer
}

func createOutput(ctx context.Context, path string) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	out := &output{f: f, w: f.Writer(ctx)}
	if strings.HasSuffix(path, ".gz") {
		out.gz = gzip.NewWriter(out.w)
		out.w = out.gz
	}
	return out, nil
}

func (o *output) Write(p []byte) (int, error) { return o.w.Write(p) }

func (o *output) Close(ctx context.Context) error {
	once := errors.Once{}
	if o.gz != nil {
		once.Set(o.gz.Close())
	}
	once.Set(o.f.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "close", o.f.Name())
	}
	return nil
}

// Filter writes the reads of opts.Map2Path to opts.OutputPath, except those
// that have more mismatches than in opts.Map1Path. See the package doc for
// details.
//
// Any error aborts the run. Temp files of an aborted run may be left behind,
// and the output is incomplete.
func Filter(ctx context.Context, opts Opts) (stats Stats, err error) {
	if err = opts.validate(); err != nil {
		return
	}
	out, err := createOutput(ctx, opts.OutputPath)
	if err != nil {
		return
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	batcher, err := NewRefBatcher(ctx, opts.Map1Path, opts)
	if err != nil {
		return
	}
	defer func() {
		if e := batcher.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", opts.Map1Path)
		}
	}()

	cur := residue{path: opts.Map2Path}
	for batcher.Scan() {
		batch := batcher.Batch()
		log.Printf("batch %d: %d reads from %s, filtering %s",
			len(stats.Batches), len(batch), opts.Map1Path, cur.path)
		var next *residueWriter
		if next, err = createResidue(opts.TmpDir, !opts.NoCompressTmpFiles); err != nil {
			return
		}
		var ps PassStats
		if ps, err = runPass(ctx, batch, cur, out, next, opts); err != nil {
			if e := next.residue().remove(); e != nil {
				log.Error.Printf("%v", e)
			}
			return
		}
		log.Printf("batch %d: %d lines, %d reads kept, %d dropped, %d deferred",
			len(stats.Batches), ps.Lines, ps.Kept, ps.Dropped, ps.Deferred)
		stats.Batches = append(stats.Batches, BatchStats{RefReads: len(batch), PassStats: ps})
		if err = cur.remove(); err != nil {
			return
		}
		cur = next.residue()
	}
	if err = batcher.Err(); err != nil {
		return
	}
	if len(stats.Batches) == 0 {
		log.Printf("%s has no reads, copying %s as is", opts.Map1Path, opts.Map2Path)
	}
	if stats.PassThroughBytes, err = appendResidue(ctx, cur, out); err != nil {
		return
	}
	err = cur.remove()
	return
}

// runPass runs one filter pass from src into out and next. It closes src and
// next.
func runPass(ctx context.Context, batch RefBatch, src residue, out io.Writer, next *residueWriter, opts Opts) (PassStats, error) {
	in, closeIn, err := src.open(ctx)
	if err != nil {
		return PassStats{}, err
	}
	ps, err := filterPass(batch, in, out, next, passOpts{
		col:        opts.MismatchCol,
		chunkBytes: opts.ChunkBytes,
		keepOrder:  opts.KeepOrder,
	})
	if err != nil {
		err = errors.E(err, "filter", src.path)
	}
	once := errors.Once{}
	once.Set(err)
	once.Set(closeIn())
	once.Set(next.Close())
	return ps, once.Err()
}

// appendResidue copies the remaining residue to out verbatim.
func appendResidue(ctx context.Context, r residue, out io.Writer) (int64, error) {
	in, closeIn, err := r.open(ctx)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		err = errors.E(err, "copy", r.path)
	}
	once := errors.Once{}
	once.Set(err)
	once.Set(closeIn())
	return n, once.Err()
}

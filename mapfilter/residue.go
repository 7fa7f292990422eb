package mapfilter

import (
	"context"
	"io"
	"io/ioutil"
	"os"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"v.io/x/lib/vlog"
)

// residue is the input of a filter pass: either the second MAP file itself,
// or a temp file holding the reads left unresolved by the previous pass.
type residue struct {
	path string
	// temp is false for the user's input, which must never be removed.
	temp bool
	// snappy is true if the file is snappy-framed.
	snappy bool
}

// open returns a reader for the residue along with its closer.
func (r residue) open(ctx context.Context) (io.Reader, func() error, error) {
	if !r.temp {
		in, rd, err := openMAP(ctx, r.path)
		if err != nil {
			return nil, nil, err
		}
		return rd, func() error { return in.Close(ctx) }, nil
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, errors.E(err, "open residue", r.path)
	}
	var rd io.Reader = f
	if r.snappy {
		rd = snappy.NewReader(f)
	}
	return rd, f.Close, nil
}

// remove deletes the residue if it is a temp file.
func (r residue) remove() error {
	if !r.temp {
		return nil
	}
	vlog.VI(1).Infof("removing residue %s", r.path)
	if err := os.Remove(r.path); err != nil {
		return errors.E(err, "remove residue", r.path)
	}
	return nil
}

// residueWriter creates the residue for the next pass.
type residueWriter struct {
	f  *os.File
	sw *snappy.Writer // nil if uncompressed
	w  io.Writer
}

// createResidue creates an empty temp file in tmpDir. tmpDir is created if it
// does not exist; "" means the system default.
func createResidue(tmpDir string, compress bool) (*residueWriter, error) {
	if tmpDir != "" {
		if err := os.MkdirAll(tmpDir, 0755); err != nil {
			return nil, errors.E(err, "create temp dir", tmpDir)
		}
	}
	f, err := ioutil.TempFile(tmpDir, "bio-map-filter-*.residue")
	if err != nil {
		return nil, errors.E(err, "create residue in", tmpDir)
	}
	vlog.VI(1).Infof("created residue %s (snappy: %v)", f.Name(), compress)
	w := &residueWriter{f: f, w: f}
	if compress {
		w.sw = snappy.NewBufferedWriter(f)
		w.w = w.sw
	}
	return w, nil
}

func (w *residueWriter) Write(p []byte) (int, error) { return w.w.Write(p) }

// Close flushes and closes the file. It must be called exactly once.
func (w *residueWriter) Close() error {
	once := errors.Once{}
	if w.sw != nil {
		once.Set(w.sw.Close())
	}
	once.Set(w.f.Close())
	if err := once.Err(); err != nil {
		return errors.E(err, "close residue", w.f.Name())
	}
	return nil
}

// residue describes the file for reading by the next pass. It is valid after
// Close.
func (w *residueWriter) residue() residue {
	return residue{path: w.f.Name(), temp: true, snappy: w.sw != nil}
}

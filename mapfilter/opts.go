package mapfilter

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/readfilter/encoding/bowtiemap"
)

// DefaultLimitReads is the default value of Opts.LimitReads.
const DefaultLimitReads = 70000000

// Opts controls Filter.
type Opts struct {
	// Map1Path is the MAP file holding the reference mismatch counts.
	Map1Path string
	// Map2Path is the MAP file to be filtered. It is never modified or removed.
	Map2Path string
	// OutputPath is where the filtered copy of Map2Path is written. A ".gz"
	// suffix causes gzip compression.
	OutputPath string

	// MismatchCol is the 0-based index of the mismatch descriptor column.
	MismatchCol int

	// LimitReads bounds the number of reads read from Map1Path per batch. A
	// batch is closed once more than LimitReads reads have been collected at
	// the end of a chunk.
	LimitReads int

	// ChunkBytes is the approximate number of bytes read at a time from each
	// input. If <= 0, bowtiemap.DefaultChunkBytes is used.
	ChunkBytes int

	// TmpDir is the directory for residue files. It is created if needed. ""
	// means the system default, usually /tmp.
	TmpDir string

	// NoCompressTmpFiles, if false (default), compresses residue files using
	// snappy.
	NoCompressTmpFiles bool

	// KeepOrder, if true, keeps the output in Map2Path's line order. Kept reads
	// are then carried through every residue file rather than written out as
	// soon as they are resolved.
	KeepOrder bool
}

// DefaultOpts holds the default values for the tuning knobs in Opts.
var DefaultOpts = Opts{
	MismatchCol: bowtiemap.DefaultMismatchCol,
	LimitReads:  DefaultLimitReads,
	ChunkBytes:  bowtiemap.DefaultChunkBytes,
}

func (o *Opts) validate() error {
	switch {
	case o.Map1Path == "":
		return errors.E(errors.Invalid, "mapfilter: missing first input MAP path")
	case o.Map2Path == "":
		return errors.E(errors.Invalid, "mapfilter: missing second input MAP path")
	case o.OutputPath == "":
		return errors.E(errors.Invalid, "mapfilter: missing output path")
	case o.OutputPath == o.Map2Path || o.OutputPath == o.Map1Path:
		return errors.E(errors.Invalid, "mapfilter: output path", o.OutputPath, "is also an input")
	case o.MismatchCol < 0:
		return errors.E(errors.Invalid, "mapfilter: negative mismatch column")
	case o.LimitReads < 0:
		return errors.E(errors.Invalid, "mapfilter: negative read limit")
	}
	return nil
}

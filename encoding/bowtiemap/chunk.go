package bowtiemap

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// DefaultChunkBytes is the default ChunkReader size hint.
const DefaultChunkBytes = 100000000

const readBufSize = 1 << 20

// ChunkReader reads a MAP stream in chunks of whole lines. Each chunk holds at
// least chunkBytes bytes unless the stream ends first; a chunk always ends on
// a line boundary, so it may overrun the hint by up to one line.
//
// Example:
//   r := bowtiemap.NewChunkReader(in, bowtiemap.DefaultChunkBytes)
//   for r.Scan() {
//     for _, line := range r.Lines() {
//       ...
//     }
//   }
//   if err := r.Err(); err != nil {
//     ...
//   }
//
// ChunkReader is not thread safe.
type ChunkReader struct {
	r     *bufio.Reader
	limit int
	buf   []byte
	ends  []int
	lines [][]byte
	eof   bool
	err   error
}

// NewChunkReader creates a ChunkReader that reads from r. If chunkBytes <= 0,
// DefaultChunkBytes is used.
func NewChunkReader(r io.Reader, chunkBytes int) *ChunkReader {
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}
	return &ChunkReader{r: bufio.NewReaderSize(r, readBufSize), limit: chunkBytes}
}

// appendLine appends the next physical line, including its terminator, to
// c.buf. It returns false if the stream had no more bytes.
func (c *ChunkReader) appendLine() (bool, error) {
	start := len(c.buf)
	for {
		frag, err := c.r.ReadSlice('\n')
		c.buf = append(c.buf, frag...)
		switch err {
		case nil:
			return true, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			c.eof = true
			return len(c.buf) > start, nil
		default:
			return false, err
		}
	}
}

// Scan reads the next chunk. It returns false at the end of the stream or on
// error; Err distinguishes the two.
func (c *ChunkReader) Scan() bool {
	if c.err != nil || c.eof {
		return false
	}
	c.buf = c.buf[:0]
	c.ends = c.ends[:0]
	for !c.eof && len(c.buf) < c.limit {
		ok, err := c.appendLine()
		if err != nil {
			c.err = errors.Wrap(err, "read MAP chunk")
			return false
		}
		if ok {
			c.ends = append(c.ends, len(c.buf))
		}
	}
	if len(c.ends) == 0 {
		return false
	}
	c.lines = c.lines[:0]
	start := 0
	for _, end := range c.ends {
		c.lines = append(c.lines, c.buf[start:end:end])
		start = end
	}
	return true
}

// Lines returns the lines of the current chunk. Each line keeps its "\n"
// terminator, except possibly the last line of the stream. The slices are
// valid only until the next call to Scan.
func (c *ChunkReader) Lines() [][]byte { return c.lines }

// Err returns the first read error, if any. It should be checked after Scan
// returns false.
func (c *ChunkReader) Err() error { return c.err }

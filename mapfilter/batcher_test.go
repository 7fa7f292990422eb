package mapfilter

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func readBatches(t *testing.T, path string, opts Opts) ([]RefBatch, error) {
	ctx := vcontext.Background()
	b, err := NewRefBatcher(ctx, path, opts)
	assert.NoError(t, err)
	var batches []RefBatch
	for b.Scan() {
		batches = append(batches, b.Batch())
	}
	assert.NoError(t, b.Close(ctx))
	return batches, b.Err()
}

func TestRefBatcher(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)

	data := mapLine("r1", "chr1", "5:A>T") +
		mapLine("r1", "chr2", "5:A>T") +
		mapLine("r2", "chr1") +
		mapLine("r3", "chr3", "1:A>C", "2:A>C") +
		mapLine("r4", "chr4", "8:G>T")
	path := filepath.Join(tmpDir, "genome.map")
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))

	tests := []struct {
		limit, chunkBytes int
		want              []RefBatch
	}{
		{1 << 30, 1 << 20, []RefBatch{{"r1": 1, "r2": 0, "r3": 2, "r4": 1}}},
		// One line per chunk; a batch closes once it holds two reads. The second
		// r1 line is skipped by the name cursor.
		{1, 1, []RefBatch{{"r1": 1, "r2": 0}, {"r3": 2, "r4": 1}}},
		{2, 1, []RefBatch{{"r1": 1, "r2": 0, "r3": 2}, {"r4": 1}}},
		// A batch per read. The cursor spans batch boundaries, so r1 is not
		// repeated in a second batch.
		{0, 1, []RefBatch{{"r1": 1}, {"r2": 0}, {"r3": 2}, {"r4": 1}}},
		// The whole file is one chunk, so the limit is only checked at EOF.
		{0, 1 << 20, []RefBatch{{"r1": 1, "r2": 0, "r3": 2, "r4": 1}}},
	}
	for _, test := range tests {
		opts := DefaultOpts
		opts.LimitReads = test.limit
		opts.ChunkBytes = test.chunkBytes
		batches, err := readBatches(t, path, opts)
		assert.NoError(t, err)
		expect.EQ(t, batches, test.want, "limit %d chunk %d", test.limit, test.chunkBytes)
	}
}

func TestRefBatcherFirstSeenWins(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)

	// r1 is not contiguous, so the cursor does not catch the repeat.
	data := mapLine("r1", "chr1") + mapLine("r2", "chr1") + mapLine("r1", "chr2", "1:A>C")
	path := filepath.Join(tmpDir, "genome.map")
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
	batches, err := readBatches(t, path, DefaultOpts)
	assert.NoError(t, err)
	expect.EQ(t, batches, []RefBatch{{"r1": 0, "r2": 0}})
}

func TestRefBatcherEmpty(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)

	path := filepath.Join(tmpDir, "empty.map")
	assert.NoError(t, ioutil.WriteFile(path, nil, 0600))
	batches, err := readBatches(t, path, DefaultOpts)
	assert.NoError(t, err)
	expect.EQ(t, len(batches), 0)
}

func TestRefBatcherGzip(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(mapLine("r1", "chr1", "5:A>T") + mapLine("r2", "chr1")))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	path := filepath.Join(tmpDir, "genome.map.gz")
	assert.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0600))

	batches, err := readBatches(t, path, DefaultOpts)
	assert.NoError(t, err)
	expect.EQ(t, batches, []RefBatch{{"r1": 1, "r2": 0}})
}

func TestRefBatcherShortLine(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)

	path := filepath.Join(tmpDir, "bad.map")
	data := mapLine("r1", "chr1") + "r2\t+\tchr1\n"
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
	_, err := readBatches(t, path, DefaultOpts)
	expect.True(t, err != nil)
	expect.True(t, strings.Contains(err.Error(), path), err)
	expect.True(t, strings.Contains(err.Error(), "want column 8"), err)
}

func TestRefBatcherMissingFile(t *testing.T) {
	_, err := NewRefBatcher(vcontext.Background(), "/non/existent/genome.map", DefaultOpts)
	expect.True(t, err != nil)
}

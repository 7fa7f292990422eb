package main

/*
bio-map-filter removes the reads of one bowtie MAP file that align worse, i.e.
with more mismatches, than in another MAP file. It is typically used to drop
reads that map to the transcriptome worse than to the genome.

Both MAP files must contain only the best-stratum alignments of each read, with
the lines of a read adjacent.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/readfilter/mapfilter"
)

var (
	map1Path           = flag.String("input-map-1", "", "The reference MAP file, e.g., reads aligned to the genome. Required.")
	map2Path           = flag.String("input-map-2", "", "The MAP file to filter, e.g., reads aligned to the transcriptome. Required.")
	outputPath         = flag.String("output", "", "Output MAP file. It contains the lines of -input-map-2 except for the reads that have more mismatches there than in -input-map-1. A .gz suffix compresses the output. Required.")
	mismatchesColumn   = flag.Int("mismatches-column", mapfilter.DefaultOpts.MismatchCol+1, "1-based column of the MAP files that holds the mismatch descriptors")
	tmpDir             = flag.String("tmp-dir", "", "Directory to write temporary files to (default os.TempDir())")
	limitReads         = flag.Int("limit-reads", mapfilter.DefaultOpts.LimitReads, "Approximate number of reads of -input-map-1 held in memory at a time")
	chunkBytes         = flag.Int("chunk-bytes", mapfilter.DefaultOpts.ChunkBytes, "Approximate number of bytes read from an input at a time")
	noCompressTmpFiles = flag.Bool("no-compress-tmp-files", false, "Do not snappy-compress temporary files")
	keepOrder          = flag.Bool("keep-order", false, "Keep the line order of -input-map-2 in the output. Temporary files become larger")
	statsPath          = flag.String("stats", "", "If set, write per-batch statistics as TSV to this path")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -input-map-1 genome.map -input-map-2 transcriptome.map -output filtered.map [OPTIONS]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func writeStats(ctx context.Context, path string, stats mapfilter.Stats) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return mapfilter.WriteStats(out.Writer(ctx), stats)
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *map1Path == "" || *map2Path == "" || *outputPath == "" || *mismatchesColumn < 1 {
		flag.Usage()
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		log.Fatalf("unexpected positional arguments: %v", flag.Args())
	}
	opts := mapfilter.DefaultOpts
	opts.Map1Path = *map1Path
	opts.Map2Path = *map2Path
	opts.OutputPath = *outputPath
	opts.MismatchCol = *mismatchesColumn - 1
	opts.TmpDir = *tmpDir
	opts.LimitReads = *limitReads
	opts.ChunkBytes = *chunkBytes
	opts.NoCompressTmpFiles = *noCompressTmpFiles
	opts.KeepOrder = *keepOrder

	ctx := vcontext.Background()
	log.Printf("starting: %+v", opts)
	stats, err := mapfilter.Filter(ctx, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *statsPath != "" {
		if err := writeStats(ctx, *statsPath, stats); err != nil {
			log.Fatalf("write stats %s: %v", *statsPath, err)
		}
	}
	log.Printf("all done: %d batches", len(stats.Batches))
}

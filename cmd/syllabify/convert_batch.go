package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/fileutil"
	"github.com/alnah/go-syllabify/internal/hints"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/manifest"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Skipped    bool // unchanged since the last run
	Stats      syllabify.Stats
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the annotator pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Annotator creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	now := params.env.Now
	start := now()
	result := ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = now().Sub(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	hash := manifest.Hash(content)
	if !params.force && params.manifest.Unchanged(f.InputPath, hash) {
		result.Skipped = true
		params.log.Debug("unchanged, skipped", logger.String("input", f.InputPath))
		return finish(nil)
	}

	data, stats, err := render(ctx, conv, f, string(content))
	if err != nil {
		return finish(err)
	}
	result.Stats = stats

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return finish(fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory()))
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, data, filePermissions); err != nil {
		return finish(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	params.manifest.Record(f.InputPath, hash, f.OutputPath)
	return finish(nil)
}

// render produces the output bytes of one file. Plain text output is
// segmented word by word and keeps its layout.
func render(ctx context.Context, conv Converter, f FileToConvert, content string) ([]byte, syllabify.Stats, error) {
	if f.Output == config.FormatText {
		out, err := conv.Segment(content)
		if err != nil {
			return nil, syllabify.Stats{}, err
		}
		return []byte(out), syllabify.Stats{}, nil
	}

	res, err := conv.Annotate(ctx, syllabify.Input{
		Content:   content,
		Format:    f.Input,
		Title:     strings.TrimSuffix(filepath.Base(f.InputPath), filepath.Ext(f.InputPath)),
		SourceDir: filepath.Dir(f.InputPath),
		PDF:       f.Output == config.FormatPDF,
	})
	if err != nil {
		return nil, syllabify.Stats{}, err
	}
	if f.Output == config.FormatPDF {
		return res.PDF, res.Stats, nil
	}
	return res.HTML, res.Stats, nil
}

// ResultSummary holds the count of succeeded, skipped and failed conversions.
type ResultSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// countResults tallies conversion outcomes.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Skipped:
			summary.Skipped++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}

		switch {
		case r.Skipped:
			if verbose {
				fmt.Fprintf(env.Stdout, "Unchanged %s\n", r.InputPath)
			}
		case verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%d units, %v)\n",
				r.InputPath, r.OutputPath, r.Stats.Written, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d unchanged, %d failed\n",
			summary.Succeeded, summary.Skipped, summary.Failed)
	}

	return summary.Failed
}

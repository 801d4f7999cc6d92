package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/manifest"
	"github.com/alnah/go-syllabify/internal/watch"
)

// Sentinel errors for convert operations.
var (
	ErrNoInput              = errors.New("no input specified")
	ErrNoFiles              = errors.New("no convertible files found")
	ErrUnsupportedExtension = errors.New("file must have a .txt, .md or .html extension")
	ErrInvalidWorkerCount   = errors.New("invalid worker count")
)

// inputExtensions lists the extensions convert and watch pick up.
var inputExtensions = []string{".txt", ".text", ".md", ".markdown", ".html", ".htm"}

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Input      syllabify.Format // format of the input file
	Output     string           // config.FormatHTML, FormatPDF or FormatText
}

// conversionParams groups parameters shared across a batch.
type conversionParams struct {
	manifest *manifest.Manifest
	force    bool
	log      logger.Logger
	env      *Environment
}

// runConvert converts files or directory trees into the output directory.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags := &convertFlags{}
	fs := buildConvertFlagSet(env.Stderr, flags)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := loadSettings(fs, &flags.common, env)
	if err != nil {
		return err
	}
	if err := validateWorkers(cfg.Browser.Workers); err != nil {
		return err
	}
	z := newLogger(cfg, env)
	defer func() { _ = z.Sync() }()
	log := logger.FromZap(z)

	inputPath, err := resolveInputPath(fs.Args())
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir, cfg.Output.Format)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFiles, inputPath)
	}

	m, err := manifest.Load(outputDir, settingsDigest(cfg))
	if err != nil {
		return err
	}

	pool := env.NewPool(syllabify.ResolvePoolSize(cfg.Browser.Workers), annotatorOptions(cfg, z)...)
	defer func() { _ = pool.Close() }()
	log.Debug("converting",
		logger.String("input", inputPath),
		logger.String("output", outputDir),
		logger.Int("files", len(files)),
		logger.Int("workers", pool.Size()),
	)

	params := &conversionParams{manifest: m, force: flags.force, log: log, env: env}
	results := convertBatch(ctx, pool, files, params)
	if err := m.Save(); err != nil {
		return err
	}

	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d conversion(s) failed", failedCount)
	}
	return nil
}

// resolveInputPath determines the input path from args.
func resolveInputPath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	if cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return config.DefaultOutputDir
}

// discoverFiles finds the files to convert under inputPath. The output
// directory and excluded directories are never entered, so a run never reads
// its own output.
func discoverFiles(inputPath, outputDir, format string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !acceptedInput(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrUnsupportedExtension, filepath.Ext(inputPath))
		}
		return []FileToConvert{newFileToConvert(inputPath, outputDir, "", format)}, nil
	}

	outAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, err
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputPath && skippedDir(path, d.Name(), outAbs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !acceptedInput(path) {
			return nil
		}
		files = append(files, newFileToConvert(path, outputDir, inputPath, format))
		return nil
	})
	return files, err
}

// skippedDir reports whether a directory below the input root is skipped:
// the output directory, hidden directories and the watcher's defaults.
func skippedDir(path, name, outAbs string) bool {
	if abs, err := filepath.Abs(path); err == nil && abs == outAbs {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains(watch.DefaultExcludeDirs, name)
}

// acceptedInput reports whether path has a convertible extension.
func acceptedInput(path string) bool {
	return slices.Contains(inputExtensions, strings.ToLower(filepath.Ext(path)))
}

func newFileToConvert(inputPath, outputDir, baseInputDir, format string) FileToConvert {
	in := syllabify.FormatForPath(inputPath)
	out := resolveOutputFormat(in, format)
	return FileToConvert{
		InputPath:  inputPath,
		OutputPath: resolveOutputPath(inputPath, outputDir, baseInputDir, outputExtension(out)),
		Input:      in,
		Output:     out,
	}
}

// resolveOutputFormat picks the output format of one input. Text stays text
// unless another format is requested; Markdown and HTML become HTML, since
// plain text output would lose their markup.
func resolveOutputFormat(in syllabify.Format, format string) string {
	switch strings.ToLower(format) {
	case config.FormatPDF:
		return config.FormatPDF
	case config.FormatHTML:
		return config.FormatHTML
	}
	if in == syllabify.FormatText {
		return config.FormatText
	}
	return config.FormatHTML
}

func outputExtension(format string) string {
	switch format {
	case config.FormatPDF:
		return ".pdf"
	case config.FormatText:
		return ".txt"
	default:
		return ".html"
	}
}

// resolveOutputPath mirrors inputPath below outputDir, relative to
// baseInputDir, with the extension replaced by ext.
func resolveOutputPath(inputPath, outputDir, baseInputDir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ext

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil && !strings.HasPrefix(relPath, "..") {
			return filepath.Join(outputDir, filepath.Dir(relPath), base)
		}
	}
	return filepath.Join(outputDir, base)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > syllabify.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, syllabify.MaxPoolSize)
	}
	return nil
}

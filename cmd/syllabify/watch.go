package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/manifest"
	"github.com/alnah/go-syllabify/internal/watch"
)

// runWatch converts a directory tree, then converts changed files again
// until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags := &convertFlags{}
	fs := buildWatchFlagSet(env.Stderr, flags)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: watch takes exactly one directory", ErrUsage)
	}
	root := fs.Arg(0)

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
	outputDir := resolveOutputDir(flags.output, cfg)

	w, err := watch.New(root, watch.Config{
		Debounce:   flags.delay,
		Extensions: inputExtensions,
		Ignore:     []string{outputDir},
		Logger:     log.With(logger.String("component", "watch")),
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	m, err := manifest.Load(outputDir, settingsDigest(cfg))
	if err != nil {
		return err
	}
	pool := env.NewPool(syllabify.ResolvePoolSize(cfg.Browser.Workers), annotatorOptions(cfg, z)...)
	defer func() { _ = pool.Close() }()
	params := &conversionParams{manifest: m, force: flags.force, log: log, env: env}

	// Initial pass over the whole tree; unchanged files are skipped.
	files, err := discoverFiles(w.Root(), outputDir, cfg.Output.Format)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	convertAndReport(ctx, pool, files, params, flags, env)

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", w.Root())
	}
	err = w.Run(ctx, func(events []watch.Event) {
		var changed []FileToConvert
		for _, ev := range events {
			f := newFileToConvert(ev.Path, outputDir, w.Root(), cfg.Output.Format)
			if ev.Removed {
				removeOutput(f, m, log)
				continue
			}
			changed = append(changed, f)
		}
		convertAndReport(ctx, pool, changed, params, flags, env)
	})
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if saveErr := m.Save(); saveErr != nil && err == nil {
		err = saveErr
	}
	return err
}

// convertAndReport converts files, reports results and saves the manifest.
func convertAndReport(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams, flags *convertFlags, env *Environment) {
	if len(files) == 0 {
		return
	}
	results := convertBatch(ctx, pool, files, params)
	printResults(results, flags.common.quiet, flags.common.verbose, env)
	if err := params.manifest.Save(); err != nil {
		params.log.Warn("saving manifest failed", logger.Error(err))
	}
}

// removeOutput deletes the mirrored output of a removed input.
func removeOutput(f FileToConvert, m *manifest.Manifest, log logger.Logger) {
	m.Forget(f.InputPath)
	if err := os.Remove(f.OutputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("removing output failed", logger.String("output", f.OutputPath), logger.Error(err))
		return
	}
	log.Debug("output removed", logger.String("output", filepath.ToSlash(f.OutputPath)))
}

package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/fileutil"
	"github.com/alnah/go-syllabify/internal/logger"
)

// unsafeNameChars matches runs of characters replaced in derived file names.
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// runPage renders a web page in Chrome, annotates the rendered DOM and writes
// it as HTML or PDF.
func runPage(ctx context.Context, args []string, env *Environment) error {
	flags := &pageFlags{}
	fs := buildPageFlagSet(env.Stderr, flags)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: page takes exactly one URL", ErrUsage)
	}
	pageURL := fs.Arg(0)

	cfg, err := loadSettings(fs, &flags.common, env)
	if err != nil {
		return err
	}
	pdf := flags.pdf || strings.EqualFold(cfg.Output.Format, config.FormatPDF)

	z := newLogger(cfg, env)
	defer func() { _ = z.Sync() }()
	log := logger.FromZap(z)

	ann, err := env.NewAnnotator(annotatorOptions(cfg, z)...)
	if err != nil {
		return err
	}
	defer func() { _ = ann.Close() }()

	start := env.Now()
	content, err := ann.FetchPage(ctx, pageURL)
	if err != nil {
		return err
	}
	res, err := ann.Annotate(ctx, syllabify.Input{
		Content: content,
		Format:  syllabify.FormatHTML,
		BaseURL: pageURL,
		PDF:     pdf,
	})
	if err != nil {
		return err
	}
	log.Debug("page annotated",
		logger.String("url", pageURL),
		logger.Int("units", res.Stats.Units),
		logger.Duration("elapsed", env.Now().Sub(start)),
	)

	data := res.HTML
	if pdf {
		data = res.PDF
	}

	output := flags.output
	if output == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = pageOutputPath(pageURL, pdf)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(output, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s (%d units changed)\n", output, res.Stats.Written)
	}
	return nil
}

// pageOutputPath derives a file name from the page host and path, such as
// "example.com_songs_intro.html".
func pageOutputPath(pageURL string, pdf bool) string {
	ext := ".html"
	if pdf {
		ext = ".pdf"
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "page" + ext
	}
	name := u.Host + strings.TrimSuffix(u.Path, "/")
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "_.")
	if name == "" {
		name = "page"
	}
	return name + ext
}

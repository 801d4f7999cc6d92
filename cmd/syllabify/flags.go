package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	profile string
	quiet   bool
	verbose bool
	logJSON bool
}

// segmenterFlags holds segmentation backend flags.
type segmenterFlags struct {
	backend       string
	patterns      string
	separator     string
	minWordLength int
	noMerge       bool
}

// pipelineFlags holds unit eligibility and region flags.
type pipelineFlags struct {
	minTextLength int
	excludeTags   []string
	regions       string
	skipBracketed bool
}

// liveFlags holds live document scheduling flags.
type liveFlags struct {
	mode         string
	debounce     time.Duration
	initialDelay time.Duration
}

// assetFlags holds asset-related flags (CSS, custom asset path).
type assetFlags struct {
	style     string // Name, path or CSS content
	assetPath string // Override asset directory
	noStyle   bool   // Disable CSS styling
}

// browserFlags holds headless Chrome flags.
type browserFlags struct {
	timeout time.Duration
	settle  time.Duration
}

// annotateFlags groups every flag that shapes an annotator.
type annotateFlags struct {
	common    commonFlags
	segmenter segmenterFlags
	pipeline  pipelineFlags
	assets    assetFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.profile, "profile", "", "built-in profile: default, page, lyrics")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
	fs.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")
}

// addSegmenterFlags adds segmentation backend flags to a FlagSet.
func addSegmenterFlags(fs *flag.FlagSet, f *segmenterFlags) {
	fs.StringVarP(&f.backend, "backend", "b", "", "segmentation backend: heuristic, patterns")
	fs.StringVar(&f.patterns, "patterns", "", "pattern set name or .pat.txt(.xz) path")
	fs.StringVar(&f.separator, "separator", "", "syllable separator (default \"·\")")
	fs.IntVar(&f.minWordLength, "min-word-length", 0, "leave words of at most n letters unsplit")
	fs.BoolVar(&f.noMerge, "no-merge", false, "disable -ed/-es merging")
}

// addPipelineFlags adds unit eligibility and region flags to a FlagSet.
func addPipelineFlags(fs *flag.FlagSet, f *pipelineFlags) {
	fs.IntVar(&f.minTextLength, "min-text-length", 0, "shortest text unit segmented, in characters")
	fs.StringSliceVar(&f.excludeTags, "exclude", nil, "elements never touched (replaces the built-in set)")
	fs.StringVarP(&f.regions, "regions", "r", "", "CSS selector of annotated regions (\"\" = body)")
	fs.BoolVar(&f.skipBracketed, "skip-bracketed", false, "leave labels such as [Chorus] untouched")
}

// addLiveFlags adds live document scheduling flags to a FlagSet.
func addLiveFlags(fs *flag.FlagSet, f *liveFlags) {
	fs.StringVar(&f.mode, "mode", "", "live mode: immediate, debounced")
	fs.DurationVar(&f.debounce, "debounce", 0, "quiet period of debounced rescans (e.g. 500ms)")
	fs.DurationVar(&f.initialDelay, "initial-delay", 0, "delay before the first debounced scan")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable CSS styling")
}

// addBrowserFlags adds headless Chrome flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "browser timeout per page (e.g. 30s, 2m)")
	fs.DurationVar(&f.settle, "settle", 0, "quiet DOM period before a page is captured")
}

// addAnnotateFlags adds every annotator flag group to a FlagSet.
func addAnnotateFlags(fs *flag.FlagSet, f *annotateFlags) {
	addCommonFlags(fs, &f.common)
	addSegmenterFlags(fs, &f.segmenter)
	addPipelineFlags(fs, &f.pipeline)
	addAssetFlags(fs, &f.assets)
}

// newFlagSet creates a FlagSet that prints usage to w and reports errors
// instead of exiting.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseFlags parses args and wraps parse failures as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// segmentFlags holds all flags for the segment command.
type segmentFlags struct {
	common    commonFlags
	segmenter segmenterFlags
}

// convertFlags holds all flags for the convert and watch commands.
type convertFlags struct {
	annotateFlags
	browser browserFlags
	output  string
	format  string
	pdf     bool
	workers int
	force   bool
	delay   time.Duration // watch only
}

// pageFlags holds all flags for the page command.
type pageFlags struct {
	annotateFlags
	browser browserFlags
	output  string
	pdf     bool
}

// streamFlags holds all flags for the stream command.
type streamFlags struct {
	annotateFlags
	live     liveFlags
	document string
	full     bool
}

func buildSegmentFlagSet(w io.Writer, f *segmentFlags) *flag.FlagSet {
	fs := newFlagSet("segment", w, printSegmentUsage)
	addCommonFlags(fs, &f.common)
	addSegmenterFlags(fs, &f.segmenter)
	return fs
}

func buildConvertFlagSet(w io.Writer, f *convertFlags) *flag.FlagSet {
	fs := newFlagSet("convert", w, printConvertUsage)
	addConvertFlags(fs, f)
	return fs
}

func buildWatchFlagSet(w io.Writer, f *convertFlags) *flag.FlagSet {
	fs := newFlagSet("watch", w, printWatchUsage)
	addConvertFlags(fs, f)
	fs.DurationVar(&f.delay, "delay", 0, "quiet period before changed files are converted")
	return fs
}

func addConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default \"syllabified\")")
	fs.StringVarP(&f.format, "format", "f", "", "output format: html, pdf, text (default by input)")
	fs.BoolVar(&f.pdf, "pdf", false, "write PDF files (same as --format pdf)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.force, "force", false, "convert unchanged inputs again")
	addAnnotateFlags(fs, &f.annotateFlags)
	addBrowserFlags(fs, &f.browser)
}

func buildPageFlagSet(w io.Writer, f *pageFlags) *flag.FlagSet {
	fs := newFlagSet("page", w, printPageUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output file (\"-\" = stdout)")
	fs.BoolVar(&f.pdf, "pdf", false, "write a PDF instead of HTML")
	addAnnotateFlags(fs, &f.annotateFlags)
	addBrowserFlags(fs, &f.browser)
	return fs
}

func buildStreamFlagSet(w io.Writer, f *streamFlags) *flag.FlagSet {
	fs := newFlagSet("stream", w, printStreamUsage)
	fs.StringVar(&f.document, "document", "", "HTML file holding the initial document")
	fs.BoolVar(&f.full, "full", false, "write the whole document at end of input instead of each fragment")
	addAnnotateFlags(fs, &f.annotateFlags)
	addLiveFlags(fs, &f.live)
	return fs
}

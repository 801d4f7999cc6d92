package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  segment     Split words of plain text into syllables")
	fmt.Fprintln(w, "  convert     Annotate .txt, .md and .html files into an output folder")
	fmt.Fprintln(w, "  page        Render a web page in Chrome and annotate it")
	fmt.Fprintln(w, "  stream      Annotate HTML fragments read from stdin in a live document")
	fmt.Fprintln(w, "  watch       Convert a folder again whenever its files change")
	fmt.Fprintln(w, "  doctor      Check Chrome, configuration and pattern files")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'syllabify help <command>' for details on a specific command.")
}

func printSettingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Settings:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "      --profile <name>        Built-in profile: default, page, lyrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Segmenter:")
	fmt.Fprintln(w, "  -b, --backend <s>           heuristic (default) or patterns")
	fmt.Fprintln(w, "      --patterns <s>          Pattern set name or .pat.txt(.xz) path")
	fmt.Fprintln(w, "      --separator <s>         Syllable separator (default \"·\")")
	fmt.Fprintln(w, "      --min-word-length <n>   Leave words of at most n letters unsplit")
	fmt.Fprintln(w, "      --no-merge              Disable -ed/-es merging")
}

func printAnnotateUsage(w io.Writer) {
	printSettingsUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --min-text-length <n>   Shortest text unit segmented")
	fmt.Fprintln(w, "      --exclude <tags>        Elements never touched (comma separated)")
	fmt.Fprintln(w, "  -r, --regions <selector>    CSS selector of annotated regions (\"\" = body)")
	fmt.Fprintln(w, "      --skip-bracketed        Leave labels such as [Chorus] untouched")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name|path>     CSS style name or file path")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom asset directory")
	fmt.Fprintln(w, "      --no-style              Disable CSS styling")
}

func printOutputControlUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and timing")
	fmt.Fprintln(w, "      --log-json              Write logs as JSON")
}

func printBrowserUsage(w io.Writer) {
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -t, --timeout <d>           Timeout per page (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --settle <d>            Quiet DOM period before capture")
}

// printSegmentUsage prints usage for the segment command.
func printSegmentUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify segment [flags] [text...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Split the words of plain text into syllables. Reads stdin without text.")
	fmt.Fprintln(w)
	printSettingsUsage(w)
	fmt.Fprintln(w)
	printOutputControlUsage(w)
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Annotate .txt, .md and .html files. Directories are mirrored into the")
	fmt.Fprintln(w, "output folder, which is never read back. Unchanged inputs are skipped.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    File or directory")
	fmt.Fprintln(w)
	printConvertFlagsUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify watch <dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a directory like 'convert', then convert changed files again")
	fmt.Fprintln(w, "until interrupted. Outputs of removed inputs are deleted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintln(w, "      --delay <d>             Quiet period before converting (default 500ms)")
	fmt.Fprintln(w)
	printConvertFlagsUsage(w)
}

func printConvertFlagsUsage(w io.Writer) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>          Output directory (default \"syllabified\")")
	fmt.Fprintln(w, "  -f, --format <s>            html, pdf or text (default: text stays text)")
	fmt.Fprintln(w, "      --pdf                   Write PDF files (requires Chrome)")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --force                 Convert unchanged inputs again")
	fmt.Fprintln(w)
	printAnnotateUsage(w)
	fmt.Fprintln(w)
	printBrowserUsage(w)
	fmt.Fprintln(w)
	printOutputControlUsage(w)
}

// printPageUsage prints usage for the page command.
func printPageUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify page <url> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load a page in Chrome, wait for its scripts to settle, annotate the")
	fmt.Fprintln(w, "rendered document and write it as HTML or PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file, \"-\" for stdout (default from URL)")
	fmt.Fprintln(w, "      --pdf                   Write a PDF")
	fmt.Fprintln(w)
	printAnnotateUsage(w)
	fmt.Fprintln(w)
	printBrowserUsage(w)
	fmt.Fprintln(w)
	printOutputControlUsage(w)
}

// printStreamUsage prints usage for the stream command.
func printStreamUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify stream [flags] < fragments.html")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Insert HTML fragments read from stdin, one per line, at the end of a live")
	fmt.Fprintln(w, "document and write each one back once annotated.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --document <path>       Initial HTML document (default: empty page)")
	fmt.Fprintln(w, "      --full                  Write the whole document at end of input")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Live:")
	fmt.Fprintln(w, "      --mode <s>              immediate (default) or debounced (needs --regions)")
	fmt.Fprintln(w, "      --debounce <d>          Quiet period of debounced rescans (default 500ms)")
	fmt.Fprintln(w, "      --initial-delay <d>     Delay before the first debounced scan")
	fmt.Fprintln(w)
	printAnnotateUsage(w)
	fmt.Fprintln(w)
	printOutputControlUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: syllabify doctor [--json] [--config <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the environment, the configuration and its pattern files.")
	fmt.Fprintln(w, "Exits 1 when errors are found.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "segment":
		printSegmentUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "page":
		printPageUsage(env.Stdout)
	case "stream":
		printStreamUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: syllabify version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: syllabify help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

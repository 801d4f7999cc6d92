package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-syllabify/internal/logger"
)

// emptyDocument seeds a stream without --document.
const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// maxStreamLine bounds one input line.
const maxStreamLine = 4 << 20

// runStream reads HTML fragments from stdin, one per line, inserts each at the
// end of a live document and writes it back once annotated.
func runStream(ctx context.Context, args []string, env *Environment) error {
	flags := &streamFlags{}
	fs := buildStreamFlagSet(env.Stderr, flags)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: stream reads stdin and takes no arguments", ErrUsage)
	}

	cfg, err := loadSettings(fs, &flags.common, env)
	if err != nil {
		return err
	}
	z := newLogger(cfg, env)
	defer func() { _ = z.Sync() }()
	log := logger.FromZap(z)

	document := emptyDocument
	if flags.document != "" {
		data, err := os.ReadFile(flags.document) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		document = string(data)
	}

	ann, err := env.NewAnnotator(annotatorOptions(cfg, z)...)
	if err != nil {
		return err
	}
	defer func() { _ = ann.Close() }()

	sess, err := ann.NewSession(ctx, document)
	if err != nil {
		return err
	}
	defer sess.Close()

	scanner := bufio.NewScanner(env.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out, err := sess.Append(ctx, line)
		if err != nil {
			return err
		}
		if !flags.full {
			fmt.Fprintln(env.Stdout, out)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	if err := sess.Flush(ctx); err != nil {
		return err
	}
	if flags.full {
		out, err := sess.HTML(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, out)
	}

	st, err := sess.Stats(ctx)
	if err != nil {
		return err
	}
	log.Info("stream finished",
		logger.Int("regions", st.Regions),
		logger.Int("units", st.Units),
		logger.Int("written", st.Written),
		logger.Int("failed", st.Failed),
	)
	return nil
}

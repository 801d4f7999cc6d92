package main

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// maxSegmentInput bounds text read from stdin.
const maxSegmentInput = 64 << 20

// runSegment segments plain text from the arguments, or from stdin without
// arguments, and writes the result to stdout.
func runSegment(ctx context.Context, args []string, env *Environment) error {
	flags := &segmentFlags{}
	fs := buildSegmentFlagSet(env.Stderr, flags)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := loadSettings(fs, &flags.common, env)
	if err != nil {
		return err
	}
	z := newLogger(cfg, env)
	defer func() { _ = z.Sync() }()

	text := strings.Join(fs.Args(), " ")
	if fs.NArg() == 0 {
		data, err := io.ReadAll(io.LimitReader(env.Stdin, maxSegmentInput))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		text = string(data)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ann, err := env.NewAnnotator(annotatorOptions(cfg, z)...)
	if err != nil {
		return err
	}
	defer func() { _ = ann.Close() }()

	out, err := ann.Segment(text)
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		out += "\n"
	}
	_, err = io.WriteString(env.Stdout, out)
	return err
}

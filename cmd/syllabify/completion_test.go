package main

// Notes:
// - GenerateCompletion: we test that shell scripts are generated with expected
//   content markers. We do not test that the scripts actually work in the
//   target shell (that would require integration tests with actual shells).
// - getCommands: we test the registry against the real FlagSets.
// These are acceptable gaps: we test observable behavior, not runtime shell behavior.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Shell completion script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell        Shell
		wantContains []string
	}{
		{ShellBash, []string{"_syllabify_completions", "complete -F", "compgen", "convert", "--backend", "heuristic patterns"}},
		{ShellZsh, []string{"#compdef syllabify", "_arguments", "_describe", "--regions", "(immediate debounced)"}},
		{ShellFish, []string{"complete -c syllabify", "__fish_seen_subcommand_from", "-l output", "-s o"}},
		{ShellPowerShell, []string{"Register-ArgumentCompleter", "CompletionResult", "'--skip-bracketed'"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			out := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := GenerateCompletion(&buf, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("GenerateCompletion(tcsh) error = %v, want ErrUnsupportedShell", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes for an unsupported shell", buf.Len())
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Command registry
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	cmds := make(map[string]commandDef)
	for _, c := range getCommands() {
		cmds[c.Name] = c
	}

	for _, name := range []string{"segment", "convert", "page", "stream", "watch", "doctor", "completion", "version", "help"} {
		if _, ok := cmds[name]; !ok {
			t.Errorf("command %q missing", name)
		}
	}

	flagsOf := func(cmd string) map[string]flagDef {
		m := make(map[string]flagDef)
		for _, f := range cmds[cmd].Flags {
			m[f.Long] = f
		}
		return m
	}

	convert := flagsOf("convert")
	if f := convert["backend"]; f.Type != flagEnum || len(f.Values) != 2 || f.Short != "b" {
		t.Errorf("convert --backend = %+v, want enum with shorthand b", f)
	}
	if f := convert["output"]; f.Type != flagDir {
		t.Errorf("convert --output type = %v, want directory", f.Type)
	}
	if f := convert["workers"]; f.Type != flagInt {
		t.Errorf("convert --workers type = %v, want int", f.Type)
	}
	if f := convert["timeout"]; f.Type != flagDuration {
		t.Errorf("convert --timeout type = %v, want duration", f.Type)
	}
	if _, ok := convert["delay"]; ok {
		t.Error("convert must not offer the watch-only --delay flag")
	}
	if _, ok := flagsOf("watch")["delay"]; !ok {
		t.Error("watch missing --delay")
	}
	if f := flagsOf("stream")["document"]; f.Type != flagFile || f.FileGlob == "" {
		t.Errorf("stream --document = %+v, want file with glob", f)
	}
	if _, ok := flagsOf("segment")["regions"]; ok {
		t.Error("segment must not offer --regions")
	}
	if _, ok := flagsOf("doctor")["json"]; !ok {
		t.Error("doctor missing --json")
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - Command entry point
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	env := newTestEnv("")
	if err := runCompletion(nil, env.Environment); err != nil {
		t.Fatalf("runCompletion(nil) error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Usage: syllabify completion <shell>") {
		t.Errorf("no-arg output missing usage:\n%s", env.stdout.String())
	}

	env = newTestEnv("")
	if err := runCompletion([]string{"fish"}, env.Environment); err != nil {
		t.Fatalf("runCompletion(fish) error = %v", err)
	}
	if !strings.HasPrefix(env.stdout.String(), "# fish completion for syllabify") {
		t.Errorf("fish output = %q", env.stdout.String()[:40])
	}
}

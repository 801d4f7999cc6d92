package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed patterns/*.pat.txt
var patterns embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a built-in CSS style.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadPatterns loads a built-in pattern set.
func (e *EmbeddedLoader) LoadPatterns(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := patterns.ReadFile("patterns/" + name + patternExt)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrPatternsNotFound, name)
	}
	return content, nil
}

// Styles lists the built-in style names.
func (e *EmbeddedLoader) Styles() []string {
	return listNames(styles, "styles", ".css")
}

// PatternSets lists the built-in pattern set names.
func (e *EmbeddedLoader) PatternSets() []string {
	return listNames(patterns, "patterns", patternExt)
}

func listNames(fsys embed.FS, dir, ext string) []string {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := trimExt(e.Name(), ext); ok {
			names = append(names, name)
		}
	}
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)

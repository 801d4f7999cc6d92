package assets

import (
	"bytes"
	"fmt"

	"github.com/alnah/go-syllabify/internal/hyphen"
)

// Built-in asset names.
const (
	DefaultStyleName    = "reading"
	DefaultPatternsName = "en-basic"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadPatternSet compiles a pattern set. nameOrPath is either an asset name
// resolved through loader, or a path to a .pat.txt or .pat.txt.xz file.
func LoadPatternSet(loader AssetLoader, nameOrPath string) (*hyphen.Patterns, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultPatternsName
	}
	if IsFilePath(nameOrPath) {
		return hyphen.LoadFile(nameOrPath)
	}

	if loader == nil {
		loader = defaultLoader
	}
	content, err := loader.LoadPatterns(nameOrPath)
	if err != nil {
		return nil, err
	}
	p, err := hyphen.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("pattern set %q: %w", nameOrPath, err)
	}
	return p, nil
}

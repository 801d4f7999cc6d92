package assets

// AssetLoader loads reading styles and hyphenation pattern sets by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadPatterns loads a raw TeX pattern file by name (without .pat.txt).
	// Compressed files are returned decompressed.
	// Returns ErrPatternsNotFound if the pattern set doesn't exist.
	LoadPatterns(name string) ([]byte, error)
}

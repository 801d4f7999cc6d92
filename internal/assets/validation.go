package assets

import (
	"fmt"
	"strings"
)

// patternExt is the file extension of TeX pattern files.
const patternExt = ".pat.txt"

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path separators,
// dots (which could allow extension manipulation), or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// IsFilePath reports whether value names a file rather than an asset.
func IsFilePath(value string) bool {
	return strings.ContainsAny(value, "/\\") || strings.Contains(value, ".")
}

func trimExt(name, ext string) (string, bool) {
	if !strings.HasSuffix(name, ext) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}

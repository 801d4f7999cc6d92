package main

import (
	"context"
	"errors"
	"os"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/assets"
	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/hints"
	"github.com/alnah/go-syllabify/internal/syllable"
	"github.com/alnah/go-syllabify/internal/watch"
)

// Exit codes for the syllabify CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome or segmentation backend errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser and backend errors (exit 4)
	if errors.Is(err, syllabify.ErrBrowserConnect) ||
		errors.Is(err, syllabify.ErrPageCreate) ||
		errors.Is(err, syllabify.ErrPageLoad) ||
		errors.Is(err, syllabify.ErrPDFGeneration) ||
		errors.Is(err, syllabify.ErrBackendUnavailable) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoFiles) ||
		errors.Is(err, watch.ErrNotDirectory) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrEnvConfig) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedExtension) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrUnknownProfile) ||
		errors.Is(err, syllabify.ErrEmptyInput) ||
		errors.Is(err, syllabify.ErrUnknownFormat) ||
		errors.Is(err, syllabify.ErrInvalidURL) ||
		errors.Is(err, syllabify.ErrUnknownBackend) ||
		errors.Is(err, syllabify.ErrInvalidOption) ||
		errors.Is(err, syllabify.ErrInvalidSelector) ||
		errors.Is(err, syllabify.ErrStyleNotFound) ||
		errors.Is(err, syllabify.ErrPatternsNotFound) ||
		errors.Is(err, syllabify.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for well-known failures, or "".
func hintFor(err error) string {
	embedded := assets.NewEmbeddedLoader()
	switch {
	case errors.Is(err, syllabify.ErrBrowserConnect):
		return hints.ForBrowserConnect() + hints.ForDoctor()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, syllabify.ErrPatternsNotFound),
		errors.Is(err, syllabify.ErrBackendUnavailable):
		return hints.ForPatternsNotFound(embedded.PatternSets())
	case errors.Is(err, syllabify.ErrUnknownBackend):
		return hints.ForBackend(syllable.Kinds())
	case errors.Is(err, syllabify.ErrStyleNotFound):
		return hints.ForStyleNotFound(embedded.Styles())
	case errors.Is(err, syllabify.ErrInvalidSelector):
		return hints.ForRegionSelector()
	}
	return ""
}

package syllabify

import (
	"errors"

	"github.com/alnah/go-syllabify/internal/assets"
	"github.com/alnah/go-syllabify/internal/pipeline"
	"github.com/alnah/go-syllabify/internal/region"
	"github.com/alnah/go-syllabify/internal/syllable"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput     = errors.New("input content cannot be empty")
	ErrUnknownFormat  = errors.New("unknown input format")
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrMarkupParse    = pipeline.ErrMarkupParse
	ErrSessionClosed  = errors.New("session closed")
	ErrNoMatch        = errors.New("selector matched no element")

	// Browser errors.
	ErrInvalidURL     = errors.New("invalid page URL")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Segmentation errors.
	ErrBackendUnavailable = pipeline.ErrBackendUnavailable
	ErrUnknownBackend     = syllable.ErrUnknownBackend
	ErrInvalidOption      = pipeline.ErrInvalidConfig
	ErrInvalidSelector    = region.ErrInvalidSelector

	// Asset loading errors.
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrPatternsNotFound = assets.ErrPatternsNotFound
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

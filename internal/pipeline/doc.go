// Package pipeline applies syllable segmentation to HTML trees.
//
// The package has two halves:
//   - Input stages: Markdown to HTML via goldmark, plain text wrapping,
//     markup parsing with fragment detection, relative path rewriting and
//     stylesheet injection.
//   - Annotation: an Annotator that finds eligible text units and segments
//     each of them once, and a Live pipeline that keeps a dom.Document
//     annotated while its host inserts new content.
//
// A Live pipeline writes only with its observer disconnected, so its own
// writes never come back as notifications. Units already segmented are
// remembered in a processed table and also carry the separator, and regions
// carry a processed class, so repeated passes do no work.
package pipeline

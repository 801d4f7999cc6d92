// Package assets provides the CSS styles and hyphenation pattern sets used to
// render annotated documents.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed filesystem (built-in styles and patterns)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── AssetResolver     - custom-first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # reading styles (e.g., reading.css)
//	└── patterns/
//	    └── {name}.pat.txt       # TeX hyphenation patterns (or .pat.txt.xz)
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets

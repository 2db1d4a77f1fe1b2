// Package assets provides the stylesheet and HTML pages used around
// conversion: the mermaid host page loaded into headless Chrome and the
// skeleton and stylesheet of the HTML preview.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader the converter uses. A custom directory may
// override any single asset; everything it lacks comes from the embedded
// defaults.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css       # e.g. preview.css
//	└── templates/
//	    └── {name}.html      # e.g. mermaid.html, preview.html
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets

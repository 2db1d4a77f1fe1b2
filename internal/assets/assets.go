package assets

// Names of the built-in assets.
const (
	// PreviewStyle is the stylesheet inlined into HTML previews.
	PreviewStyle = "preview"
	// PreviewTemplate is the page skeleton of HTML previews. Content is
	// inserted into its element with id "content".
	PreviewTemplate = "preview"
	// MermaidTemplate is the page headless Chrome loads before rendering
	// mermaid. It must make window.mermaid available.
	MermaidTemplate = "mermaid"
)

// defaultLoader serves the embedded assets.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded CSS file by name, without extension.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an embedded HTML page by name, without extension.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

package plugin

// DescribeRequest is sent to a describer for every analysed image.
type DescribeRequest struct {
	// ImagePath is the absolute path of the image on the host.
	ImagePath string `json:"image_path"`

	// Image holds the encoded image bytes so plugins need no file access.
	Image []byte `json:"image,omitempty"`

	Format string   `json:"format"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Colors []string `json:"colors,omitempty"`

	PluginArgs map[string]any `json:"plugin_args,omitempty"`
}

// Element is a UI element a describer recognised in the image.
type Element struct {
	Label  string  `json:"label"`
	Kind   string  `json:"kind,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DescribeResponse is the describer's answer.
type DescribeResponse struct {
	Description string    `json:"description"`
	Elements    []Element `json:"elements,omitempty"`
	Layout      string    `json:"layout,omitempty"`
}

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
}

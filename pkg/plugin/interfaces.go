package plugin

import (
	"context"
)

// Describer is the interface describer plugins implement. A describer turns
// a captured image into a short description of what it shows.
type Describer interface {
	// Describe analyses the image referenced by req.
	Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}

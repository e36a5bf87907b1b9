package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/figaid/pkg/plugin"
)

// DefaultDescription is reported when no describer produced anything.
const DefaultDescription = "Image captured successfully"

// UnknownLayout is the layout reported when no describer recognised one.
const UnknownLayout = "unknown"

// Describer produces a description of an image.
type Describer interface {
	Name() string
	Describe(ctx context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error)
}

// StaticDescriber always returns the same text.
type StaticDescriber struct {
	Text string
}

// Name implements Describer.
func (s StaticDescriber) Name() string {
	return "static"
}

// Describe implements Describer.
func (s StaticDescriber) Describe(context.Context, plugin.DescribeRequest) (*plugin.DescribeResponse, error) {
	text := s.Text
	if text == "" {
		text = DefaultDescription
	}
	return &plugin.DescribeResponse{Description: text}, nil
}

// PluginDescriber adapts a go-plugin describer (such as
// executor.PluginExecutor) to the Describer interface.
type PluginDescriber struct {
	name string
	impl interface {
		Describe(ctx context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error)
	}
}

// NewPluginDescriber wraps impl under name.
func NewPluginDescriber(name string, impl interface {
	Describe(ctx context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error)
}) *PluginDescriber {
	return &PluginDescriber{name: name, impl: impl}
}

// Name implements Describer.
func (p *PluginDescriber) Name() string {
	return "plugin:" + p.name
}

// Describe implements Describer.
func (p *PluginDescriber) Describe(ctx context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error) {
	return p.impl.Describe(ctx, req)
}

// ErrNoDescription is returned by a chain where no describer succeeded.
var ErrNoDescription = errors.New("no describer produced a description")

// Chain tries describers in order and returns the first non-empty answer.
type Chain struct {
	describers []Describer
	logger     hclog.Logger
}

// NewChain creates a chain. A nil logger discards output.
func NewChain(logger hclog.Logger, describers ...Describer) *Chain {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Chain{describers: describers, logger: logger}
}

// Len returns the number of describers in the chain.
func (c *Chain) Len() int {
	return len(c.describers)
}

// Describe returns the first successful non-empty response together with
// the name of the describer that produced it.
func (c *Chain) Describe(ctx context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, string, error) {
	var errs []error
	for _, d := range c.describers {
		resp, err := d.Describe(ctx, req)
		if err != nil {
			c.logger.Warn("describer failed", "describer", d.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if resp == nil || resp.Description == "" {
			c.logger.Debug("describer returned nothing", "describer", d.Name())
			continue
		}
		return resp, d.Name(), nil
	}
	return nil, "", errors.Join(append([]error{ErrNoDescription}, errs...)...)
}

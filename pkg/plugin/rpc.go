package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// DescriberRPC implements the go-plugin Plugin interface for describers.
type DescriberRPC struct {
	plugin.Plugin
	Impl Describer
}

// Server returns an RPC server for this plugin.
func (p *DescriberRPC) Server(*plugin.MuxBroker) (any, error) {
	return &DescriberRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *DescriberRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &DescriberRPCClient{client: c}, nil
}

// DescriberRPCServer is the RPC server implementation for describers.
type DescriberRPCServer struct {
	Impl Describer
}

// Describe implements the RPC method for describing an image.
func (s *DescriberRPCServer) Describe(req DescribeRequest, resp *DescribeResponse) error {
	result, err := s.Impl.Describe(context.Background(), req)
	if err != nil {
		return err
	}
	if result != nil {
		*resp = *result
	}
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *DescriberRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// DescriberRPCClient is the RPC client implementation for describers.
type DescriberRPCClient struct {
	client *rpc.Client
}

// Describe calls the remote Describe method. The call is abandoned when ctx
// is cancelled.
func (c *DescriberRPCClient) Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error) {
	var resp DescribeResponse
	call := c.client.Go("Plugin.Describe", req, &resp, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			return nil, call.Error
		}
		return &resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetMetadata calls the remote GetMetadata method.
func (c *DescriberRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

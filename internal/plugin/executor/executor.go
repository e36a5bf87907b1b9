// Package executor launches describer plugins over go-plugin RPC and exposes
// them to the analysis pipeline.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	figplugin "github.com/jmylchreest/figaid/pkg/plugin"
)

// InfoTimeout bounds how long a plugin may take to answer InfoFlag.
const InfoTimeout = 5 * time.Second

// PluginExecutor runs one describer plugin binary. The plugin process is
// started on first use and kept until Close.
type PluginExecutor struct {
	path   string
	logger hclog.Logger

	mu        sync.Mutex
	client    *plugin.Client
	rpcClient *figplugin.DescriberRPCClient
}

// New validates pluginPath and creates an executor for it. A nil logger
// discards plugin output.
func New(pluginPath string, logger hclog.Logger) (*PluginExecutor, error) {
	if pluginPath == "" {
		return nil, fmt.Errorf("plugin path cannot be empty")
	}

	abs, err := filepath.Abs(pluginPath)
	if err != nil {
		return nil, fmt.Errorf("invalid plugin path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("plugin not found: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugin path is a directory: %s", abs)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return nil, fmt.Errorf("plugin is not executable: %s", abs)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &PluginExecutor{
		path:   abs,
		logger: logger.Named(filepath.Base(abs)),
	}, nil
}

// Path returns the absolute plugin path.
func (e *PluginExecutor) Path() string {
	return e.path
}

// Name returns the plugin binary name.
func (e *PluginExecutor) Name() string {
	return filepath.Base(e.path)
}

// Info asks the plugin binary for its metadata without starting RPC.
func (e *PluginExecutor) Info(ctx context.Context) (figplugin.PluginInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, InfoTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, e.path, figplugin.InfoFlag).Output() // #nosec G204 - configured plugin path
	if err != nil {
		return figplugin.PluginInfo{}, fmt.Errorf("failed to query plugin: %w", err)
	}

	var info figplugin.PluginInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return figplugin.PluginInfo{}, fmt.Errorf("failed to parse plugin info: %w", err)
	}
	return info, nil
}

func (e *PluginExecutor) describer() (*figplugin.DescriberRPCClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  figplugin.Handshake,
		Plugins:          figplugin.PluginMap(nil),
		Cmd:              exec.Command(e.path), // #nosec G204 - configured plugin path
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(figplugin.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*figplugin.DescriberRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin returned unexpected client type %T", raw)
	}
	e.rpcClient = client
	e.logger.Debug("plugin started")
	return client, nil
}

// Describe sends req to the plugin.
func (e *PluginExecutor) Describe(ctx context.Context, req figplugin.DescribeRequest) (*figplugin.DescribeResponse, error) {
	client, err := e.describer()
	if err != nil {
		return nil, err
	}

	resp, err := client.Describe(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("plugin %s failed: %w", e.Name(), err)
	}
	return resp, nil
}

// Close stops the plugin process if it is running.
func (e *PluginExecutor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

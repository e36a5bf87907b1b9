// Package plugin provides the public API for figaid describer plugins.
// External plugins should import this package instead of internal packages.
package plugin

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current plugin API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// PluginName is the key plugins are registered under in the plugin map.
	PluginName = "describer"

	// InfoFlag makes a plugin binary print its PluginInfo as JSON and exit.
	InfoFlag = "--plugin-info"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that plugins using go-plugin can only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1, // Major version from ProtocolVersion, offset by one
	MagicCookieKey:   "FIGAID_PLUGIN",
	MagicCookieValue: "figaid_visual_describer",
}

// PluginMap returns the plugin map used by both hosts and plugins.
func PluginMap(impl Describer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &DescriberRPC{Impl: impl},
	}
}

// Serve runs impl as a plugin process. It blocks until the host exits.
// When the binary is started with InfoFlag it prints its metadata instead.
func Serve(impl Describer) {
	if len(os.Args) > 1 && os.Args[1] == InfoFlag {
		if err := json.NewEncoder(os.Stdout).Encode(impl.GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode plugin info: %v\n", err)
			os.Exit(1)
		}
		return
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl),
	})
}

// Package mcp exposes the clip history as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/clipstash/internal/config"
	"github.com/hpungsan/clipstash/internal/store"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"clip_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"clip_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"clip_folders": {
		def:     foldersToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolders },
	},
	"clip_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"clip_count": {
		def:     countToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCount },
	},
	"clip_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"clip_pin": {
		def:     pinToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePin },
	},
	"clip_move": {
		def:     moveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMove },
	},
	"clip_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the clip tools registered. Tools
// listed in cfg.DisabledTools are left out. The store is opened through
// stores on the first tool call.
func NewServer(stores *store.Lazy, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"clipstash",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(stores)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the MCP tools on stdin/stdout until the client disconnects.
func Run(stores *store.Lazy, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(stores, cfg, version))
}

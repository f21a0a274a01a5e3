package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/clipstash/internal/errors"
	"github.com/hpungsan/clipstash/internal/ops"
	"github.com/hpungsan/clipstash/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	stores *store.Lazy
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(stores *store.Lazy) *Handlers {
	return &Handlers{stores: stores}
}

// Request types for each tool

// SearchRequest represents the arguments for clip_search.
type SearchRequest struct {
	Query  string `json:"query,omitempty"`
	Folder string `json:"folder,omitempty"`
}

// ListRequest represents the arguments for clip_list.
type ListRequest struct {
	Folder string `json:"folder,omitempty"`
}

// IDRequest represents the arguments for tools addressing one clip.
type IDRequest struct {
	ID int64 `json:"id"`
}

// CountRequest represents the arguments for clip_count.
type CountRequest struct {
	Content string `json:"content,omitempty"`
}

// AddRequest represents the arguments for clip_add.
type AddRequest struct {
	Content string `json:"content"`
}

// PinRequest represents the arguments for clip_pin.
type PinRequest struct {
	ID     int64 `json:"id"`
	Pinned *bool `json:"pinned,omitempty"`
}

// MoveRequest represents the arguments for clip_move.
type MoveRequest struct {
	ID     int64  `json:"id"`
	Folder string `json:"folder"`
}

// call decodes the request into T, opens the store and runs fn.
func call[T any](ctx context.Context, h *Handlers, req mcp.CallToolRequest, fn func(context.Context, ops.Store, T) (any, error)) (*mcp.CallToolResult, error) {
	input, err := decode[T](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	st, err := h.stores.Get()
	if err != nil {
		return errorResult(errors.Wrap(err)), nil
	}

	result, err := fn(ctx, st, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the clip_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in SearchRequest) (any, error) {
		return ops.Search(ctx, st, ops.SearchInput{Query: in.Query, Folder: in.Folder})
	})
}

// HandleList handles the clip_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in ListRequest) (any, error) {
		return ops.List(ctx, st, ops.ListInput{Folder: in.Folder})
	})
}

// HandleFolders handles the clip_folders tool call.
func (h *Handlers) HandleFolders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, _ struct{}) (any, error) {
		return ops.Folders(ctx, st)
	})
}

// HandleGet handles the clip_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in IDRequest) (any, error) {
		return ops.Get(ctx, st, ops.GetInput{ID: in.ID})
	})
}

// HandleCount handles the clip_count tool call.
func (h *Handlers) HandleCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in CountRequest) (any, error) {
		return ops.Count(ctx, st, ops.CountInput{Content: in.Content})
	})
}

// HandleAdd handles the clip_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in AddRequest) (any, error) {
		return ops.Add(ctx, st, ops.AddInput{Content: in.Content})
	})
}

// HandlePin handles the clip_pin tool call.
func (h *Handlers) HandlePin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in PinRequest) (any, error) {
		return ops.Pin(ctx, st, ops.PinInput{ID: in.ID, Pinned: in.Pinned})
	})
}

// HandleMove handles the clip_move tool call.
func (h *Handlers) HandleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in MoveRequest) (any, error) {
		return ops.Move(ctx, st, ops.MoveInput{ID: in.ID, Folder: in.Folder})
	})
}

// HandleDelete handles the clip_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(ctx, h, req, func(ctx context.Context, st ops.Store, in IDRequest) (any, error) {
		return ops.Delete(ctx, st, ops.DeleteInput{ID: in.ID})
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var cErr *errors.ClipError
	if stderrors.As(err, &cErr) {
		message := cErr.Message
		// Keep any context added by wrapping, e.g. "clip 3: NOT_FOUND: ..."
		if full := err.Error(); full != cErr.Error() {
			message = strings.TrimSuffix(full, cErr.Error()) + cErr.Message
		}
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": message,
			"status":  cErr.Status,
		}
		if cErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

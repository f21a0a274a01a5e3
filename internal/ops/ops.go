// Package ops implements the operations shared by the CLI, the web UI and
// the MCP server. Each operation takes an Input struct and returns an
// Output struct ready for JSON encoding; failures are *errors.ClipError.
package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
)

// PreviewRunes is the length of the one-line preview attached to each item.
const PreviewRunes = 80

// SortPinnedNewest names the order every list result uses.
const SortPinnedNewest = "pinned_then_newest"

// Store is the part of *store.Store the operations need.
type Store interface {
	InsertIfAbsent(ctx context.Context, content string) (bool, error)
	Update(ctx context.Context, c clip.Clip) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, substring string) ([]clip.Clip, error)
	ByFolder(ctx context.Context, name string) ([]clip.Clip, error)
	DistinctFolders(ctx context.Context) ([]string, error)
	CountExact(ctx context.Context, content string) (int, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (*clip.Clip, error)
}

// Clipboard receives text copied back from the history.
type Clipboard interface {
	SetText(text string) error
}

// ClipItem is a stored clip plus a one-line preview of its content.
type ClipItem struct {
	clip.Clip
	Preview string `json:"preview"`
}

// NewClipItem builds the ClipItem for c.
func NewClipItem(c clip.Clip) ClipItem {
	return ClipItem{Clip: c, Preview: clip.Preview(c.Content, PreviewRunes)}
}

func toItems(clips []clip.Clip) []ClipItem {
	items := make([]ClipItem, len(clips))
	for i, c := range clips {
		items[i] = NewClipItem(c)
	}
	return items
}

func validateID(id int64) error {
	if id <= 0 {
		return errors.NewInvalidRequest("id must be a positive integer")
	}
	return nil
}

// fetch loads a clip, turning store failures into ClipErrors.
func fetch(ctx context.Context, st Store, id int64) (*clip.Clip, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	c, err := st.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return c, nil
}

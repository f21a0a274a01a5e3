package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
)

// PinInput contains parameters for the Pin operation.
type PinInput struct {
	ID     int64
	Pinned *bool // nil toggles
}

// PinOutput contains the result of the Pin operation.
type PinOutput struct {
	ID       int64 `json:"id"`
	IsPinned bool  `json:"is_pinned"`
}

// Pin sets or toggles a clip's pinned flag.
func Pin(ctx context.Context, st Store, input PinInput) (*PinOutput, error) {
	c, err := fetch(ctx, st, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Pinned != nil {
		c.IsPinned = *input.Pinned
	} else {
		c.IsPinned = !c.IsPinned
	}

	if err := st.Update(ctx, *c); err != nil {
		return nil, errors.Wrap(err)
	}
	return &PinOutput{ID: c.ID, IsPinned: c.IsPinned}, nil
}

// MoveInput contains parameters for the Move operation.
type MoveInput struct {
	ID     int64
	Folder string // required, trimmed
}

// MoveOutput contains the result of the Move operation.
type MoveOutput struct {
	ID     int64  `json:"id"`
	Folder string `json:"folder"`
}

// Move assigns a clip to a folder. New folder names need no setup: a
// folder exists as long as some clip uses it.
func Move(ctx context.Context, st Store, input MoveInput) (*MoveOutput, error) {
	folder := clip.NormalizeFolder(input.Folder)
	if folder == "" {
		return nil, errors.NewInvalidRequest("folder is required")
	}

	c, err := fetch(ctx, st, input.ID)
	if err != nil {
		return nil, err
	}

	c.Folder = folder
	if err := st.Update(ctx, *c); err != nil {
		return nil, errors.Wrap(err)
	}
	return &MoveOutput{ID: c.ID, Folder: folder}, nil
}

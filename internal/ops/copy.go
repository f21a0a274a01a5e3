package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/errors"
)

// CopyInput contains parameters for the Copy operation.
type CopyInput struct {
	ID int64
}

// CopyOutput contains the result of the Copy operation.
type CopyOutput struct {
	ID      int64  `json:"id"`
	Bytes   int    `json:"bytes"`
	Preview string `json:"preview"`
}

// Copy puts a stored clip back on the clipboard. A running capture
// listener sees the change but stores nothing, since the content exists.
func Copy(ctx context.Context, st Store, cb Clipboard, input CopyInput) (*CopyOutput, error) {
	c, err := fetch(ctx, st, input.ID)
	if err != nil {
		return nil, err
	}
	if cb == nil {
		return nil, errors.NewUnavailable("clipboard unavailable")
	}

	if err := cb.SetText(c.Content); err != nil {
		return nil, errors.Wrap(err)
	}

	item := NewClipItem(*c)
	return &CopyOutput{ID: c.ID, Bytes: len(c.Content), Preview: item.Preview}, nil
}

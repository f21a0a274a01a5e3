package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID int64
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// Delete permanently removes a clip.
func Delete(ctx context.Context, st Store, input DeleteInput) (*DeleteOutput, error) {
	// Verify it exists so callers get NOT_FOUND instead of a silent no-op
	c, err := fetch(ctx, st, input.ID)
	if err != nil {
		return nil, err
	}

	if err := st.Delete(ctx, c.ID); err != nil {
		return nil, errors.Wrap(err)
	}
	return &DeleteOutput{Deleted: true, ID: c.ID}, nil
}

package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/errors"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID int64
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	ClipItem
}

// Get retrieves a single clip by id.
func Get(ctx context.Context, st Store, input GetInput) (*GetOutput, error) {
	c, err := fetch(ctx, st, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{ClipItem: NewClipItem(*c)}, nil
}

// CountInput contains parameters for the Count operation.
type CountInput struct {
	Content string // optional; counted verbatim
}

// CountOutput contains the result of the Count operation.
type CountOutput struct {
	Total   int     `json:"total"`
	Content *string `json:"content,omitempty"`
	Exact   *int    `json:"exact,omitempty"`
}

// Count returns the total number of clips and, when Content is given, how
// many clips have exactly that content (0 or 1 in a healthy store).
func Count(ctx context.Context, st Store, input CountInput) (*CountOutput, error) {
	total, err := st.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	out := &CountOutput{Total: total}

	if input.Content != "" {
		n, err := st.CountExact(ctx, input.Content)
		if err != nil {
			return nil, errors.Wrap(err)
		}
		content := input.Content
		out.Content = &content
		out.Exact = &n
	}
	return out, nil
}

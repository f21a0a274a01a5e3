package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Content string
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Created bool   `json:"created"`
	Content string `json:"content"`
}

// Add stores content the same way a clipboard capture would: trimmed, and
// only if no clip with identical content exists.
func Add(ctx context.Context, st Store, input AddInput) (*AddOutput, error) {
	content := clip.Normalize(input.Content)
	if content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}

	created, err := st.InsertIfAbsent(ctx, content)
	if err != nil {
		return nil, errors.Wrap(err)
	}

	return &AddOutput{Created: created, Content: content}, nil
}

package ops

import (
	"context"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Folder string // defaults to "Inbox"
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Folder string     `json:"folder"`
	Items  []ClipItem `json:"items"`
	Total  int        `json:"total"`
	Sort   string     `json:"sort"`
}

// List returns the clips in one folder, pinned first then newest first.
func List(ctx context.Context, st Store, input ListInput) (*ListOutput, error) {
	folder := clip.NormalizeFolder(input.Folder)
	if folder == "" {
		folder = clip.DefaultFolder
	}

	clips, err := st.ByFolder(ctx, folder)
	if err != nil {
		return nil, errors.Wrap(err)
	}

	items := toItems(clips)
	return &ListOutput{
		Folder: folder,
		Items:  items,
		Total:  len(items),
		Sort:   SortPinnedNewest,
	}, nil
}

// FoldersOutput contains the result of the Folders operation.
type FoldersOutput struct {
	Folders []string `json:"folders"`
}

// Folders returns the folder menu: "Inbox" first, then every other folder
// in use, sorted.
func Folders(ctx context.Context, st Store) (*FoldersOutput, error) {
	distinct, err := st.DistinctFolders(ctx)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return &FoldersOutput{Folders: clip.FolderMenu(distinct)}, nil
}

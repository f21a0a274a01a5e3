package clip

// DefaultFolder is the folder assigned to every newly captured clip.
// It is always offered in folder menus, even when no clip uses it.
const DefaultFolder = "Inbox"

// Clip is a single captured clipboard snippet.
type Clip struct {
	// ID is assigned by the store on insert and never reused
	ID int64 `json:"id"`

	// Content is the captured text, already trimmed by the capture path
	Content string `json:"content"`

	// Timestamp is the capture time in Unix milliseconds, set once at insert
	Timestamp int64 `json:"timestamp"`

	// IsPinned sorts the clip ahead of unpinned ones
	IsPinned bool `json:"is_pinned"`

	// Folder is a free-text label, not a foreign key
	Folder string `json:"folder"`
}

// New returns an unsaved clip with the insert-time defaults applied.
func New(content string, timestamp int64) Clip {
	return Clip{
		Content:   content,
		Timestamp: timestamp,
		Folder:    DefaultFolder,
	}
}

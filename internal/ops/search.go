package ops

import (
	"context"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
)

// Snippet limits
const (
	MaxSnippetChars    = 300
	snippetLeadContext = 60
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query  string // substring; ASCII letters match either case, % and _ are literal
	Folder string // used only when Query is empty
}

// SearchResultItem wraps a ClipItem with a match snippet.
type SearchResultItem struct {
	ClipItem
	// Snippet is HTML-safe: clip content is escaped; only <b>...</b>
	// highlight tags are present.
	Snippet string `json:"snippet"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Query  string             `json:"query"`
	Folder string             `json:"folder,omitempty"`
	Items  []SearchResultItem `json:"items"`
	Total  int                `json:"total"`
	Sort   string             `json:"sort"`
}

// Search returns clips whose content contains Query. An empty Query lists
// the given Folder, or every clip when no folder is given.
func Search(ctx context.Context, st Store, input SearchInput) (*SearchOutput, error) {
	folder := clip.NormalizeFolder(input.Folder)

	var (
		clips []clip.Clip
		err   error
	)
	if input.Query == "" && folder != "" {
		clips, err = st.ByFolder(ctx, folder)
	} else {
		folder = ""
		clips, err = st.Search(ctx, input.Query)
	}
	if err != nil {
		return nil, errors.Wrap(err)
	}

	items := make([]SearchResultItem, len(clips))
	for i, c := range clips {
		items[i] = SearchResultItem{
			ClipItem: NewClipItem(c),
			Snippet:  Snippet(c.Content, input.Query),
		}
	}

	return &SearchOutput{
		Query:  input.Query,
		Folder: folder,
		Items:  items,
		Total:  len(items),
		Sort:   SortPinnedNewest,
	}, nil
}

// Snippet returns the HTML-safe match snippet Search attaches to each item.
func Snippet(content, query string) string {
	return buildSnippet(content, query, MaxSnippetChars)
}

// buildSnippet returns escaped content around the first occurrence of query
// with the match wrapped in <b> tags. Line breaks become spaces.
func buildSnippet(content, query string, maxChars int) string {
	idx := -1
	if query != "" {
		idx = indexASCIIFold(content, query)
	}

	var b strings.Builder
	if idx < 0 {
		b.WriteString(html.EscapeString(content))
	} else {
		start := max(idx-snippetLeadContext, 0)
		for start > 0 && !utf8.RuneStart(content[start]) {
			start--
		}
		if start > 0 {
			b.WriteString("...")
		}
		b.WriteString(html.EscapeString(content[start:idx]))
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(content[idx : idx+len(query)]))
		b.WriteString("</b>")
		b.WriteString(html.EscapeString(content[idx+len(query):]))
	}

	s := strings.Join(strings.Fields(b.String()), " ")
	return truncateSnippet(s, maxChars)
}

// indexASCIIFold is strings.Index with ASCII letters compared without case,
// the same folding the store's search applies. Byte offsets are preserved.
func indexASCIIFold(s, substr string) int {
	return strings.Index(asciiLower(s), asciiLower(substr))
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// truncateSnippet truncates a snippet to approximately maxChars while:
// 1. Preserving valid UTF-8 (never splits multi-byte runes)
// 2. Preserving markup integrity (closes any open <b> tags)
// 3. Preferring word boundaries when possible
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return "..."
	}

	if len(s) <= maxChars {
		return s
	}

	truncateAt := maxChars
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	if truncateAt == 0 {
		return "..."
	}

	truncated := s[:truncateAt]

	// Drop a partial tag or entity at the cut
	if lastLT := strings.LastIndex(truncated, "<"); lastLT != -1 && !strings.Contains(truncated[lastLT:], ">") {
		truncated = truncated[:lastLT]
	}
	if lastAmp := strings.LastIndex(truncated, "&"); lastAmp != -1 && !strings.Contains(truncated[lastAmp:], ";") {
		truncated = truncated[:lastAmp]
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > truncateAt/2 {
		truncated = truncated[:lastSpace]
	}

	for range strings.Count(truncated, "<b>") - strings.Count(truncated, "</b>") {
		truncated += "</b>"
	}

	return truncated + "..."
}

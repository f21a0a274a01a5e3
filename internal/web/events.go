package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/feed"
	"github.com/hpungsan/clipstash/internal/ops"
)

// keepAliveInterval spaces comment lines that hold idle event streams open.
const keepAliveInterval = 15 * time.Second

// HandleEvents handles GET /events: a Server-Sent Events stream that pushes
// the re-rendered clip list each time the underlying query result changes.
// It takes the same q and folder parameters as /clips.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	st, err := h.store()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	query := r.URL.Query().Get("q")
	folder := strings.TrimSpace(r.URL.Query().Get("folder"))
	if query == "" && folder == "" {
		folder = clip.DefaultFolder
	}
	q := feed.Search(query)
	if query == "" {
		q = feed.Folder(folder)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Latest result wins: an unread result is replaced by a newer one
	results := make(chan feed.Result, 1)
	sub, err := st.Subscribe(ctx, q, func(res feed.Result) {
		for {
			select {
			case results <- res:
				return
			case <-ctx.Done():
				return
			default:
				select {
				case <-results:
				default:
				}
			}
		}
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	slog.Debug("event stream opened", "sub", sub.ID(), "query", q.String())
	defer slog.Debug("event stream closed", "sub", sub.ID())

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case res := <-results:
			if err := h.writeListEvent(ctx, w, st, query, folder, res); err != nil {
				slog.Debug("event stream write failed", "sub", sub.ID(), "err", err)
				return
			}
			flusher.Flush()
		}
	}
}

// writeListEvent renders res as the "clip-list" fragment and writes it as
// one "clips" event. A failed query is sent as an "error" event.
func (h *Handlers) writeListEvent(ctx context.Context, w http.ResponseWriter, st ops.Store, query, folder string, res feed.Result) error {
	if res.Err != nil {
		return writeEvent(w, "error", res.Seq, res.Err.Error())
	}

	data := ListPageData{
		PageData: PageData{Version: h.renderer.version},
		Folder:   folder,
		Query:    query,
		Items:    make([]ops.SearchResultItem, len(res.Clips)),
		Total:    len(res.Clips),
	}
	if query != "" {
		data.Folder = ""
	}
	data.Self = pageURL("/clips", query, data.Folder)
	for i, c := range res.Clips {
		data.Items[i] = ops.SearchResultItem{
			ClipItem: ops.NewClipItem(c),
			Snippet:  ops.Snippet(c.Content, query),
		}
	}
	if menu, err := ops.Folders(ctx, st); err == nil {
		data.Folders = menu.Folders
	}

	fragment, err := h.renderer.executeBlock("list", "clip-list", data)
	if err != nil {
		return err
	}
	return writeEvent(w, "clips", res.Seq, string(fragment))
}

// writeEvent writes one SSE event, splitting data across data: lines.
func writeEvent(w http.ResponseWriter, event string, seq uint64, data string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\nevent: %s\n", seq, event)
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := fmt.Fprint(w, b.String())
	return err
}

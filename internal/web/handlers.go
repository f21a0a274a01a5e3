package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
	"github.com/hpungsan/clipstash/internal/ops"
	"github.com/hpungsan/clipstash/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	stores    *store.Lazy
	clipboard ops.Clipboard
	renderer  *Renderer
}

func (h *Handlers) store() (*store.Store, error) {
	s, err := h.stores.Get()
	if err != nil {
		return nil, errors.Wrap(err)
	}
	return s, nil
}

// HandleList handles GET /clips: the clips of one folder, or search results
// when q is set.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	st, err := h.store()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data, err := h.listData(r.Context(), st, r.URL.Query().Get("q"), r.URL.Query().Get("folder"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, data.Items)
		return
	}

	// Live search swaps only the list
	if r.Header.Get("HX-Target") == "clips" {
		h.renderer.renderBlock(w, http.StatusOK, "list", "clip-list", data)
		return
	}

	h.renderer.renderPage(w, r, "list", data)
}

// listData runs the list/search query behind the list page. An empty query
// with no folder shows the Inbox, as the app opens on it.
func (h *Handlers) listData(ctx context.Context, st ops.Store, query, folder string) (ListPageData, error) {
	folder = strings.TrimSpace(folder)
	if query == "" && folder == "" {
		folder = clip.DefaultFolder
	}

	result, err := ops.Search(ctx, st, ops.SearchInput{Query: query, Folder: folder})
	if err != nil {
		return ListPageData{}, err
	}
	menu, err := ops.Folders(ctx, st)
	if err != nil {
		return ListPageData{}, err
	}

	nav, title := "clips", result.Folder
	if query != "" {
		nav, title = "search", "Search"
	}

	return ListPageData{
		PageData: PageData{
			Title:   title,
			Version: h.renderer.version,
			Nav:     nav,
		},
		Folder:    result.Folder,
		Query:     query,
		Folders:   menu.Folders,
		Items:     result.Items,
		Total:     result.Total,
		Self:      pageURL("/clips", query, result.Folder),
		EventsURL: pageURL("/events", query, result.Folder),
	}, nil
}

// HandleDetail handles GET /clips/{id}: one clip with its content rendered.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	st, err := h.store()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := ops.Get(r.Context(), st, ops.GetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	menu, err := ops.Folders(r.Context(), st)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   out.Preview,
			Version: h.renderer.version,
			Nav:     "clips",
		},
		Clip:         out.ClipItem,
		RenderedHTML: renderMarkdown(out.Content),
		Folders:      menu.Folders,
	})
}

// HandlePin handles POST /clips/{id}/pin. A "pinned" form value of true or
// false sets the flag; without it the flag toggles.
func (h *Handlers) HandlePin(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st ops.Store, id int64) (any, error) {
		input := ops.PinInput{ID: id}
		if v := r.FormValue("pinned"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errors.NewInvalidRequest("pinned must be true or false")
			}
			input.Pinned = &b
		}
		return ops.Pin(ctx, st, input)
	})
}

// HandleMove handles POST /clips/{id}/move with a "folder" form value.
func (h *Handlers) HandleMove(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st ops.Store, id int64) (any, error) {
		return ops.Move(ctx, st, ops.MoveInput{ID: id, Folder: r.FormValue("folder")})
	})
}

// HandleCopy handles POST /clips/{id}/copy: put the clip on the clipboard.
func (h *Handlers) HandleCopy(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st ops.Store, id int64) (any, error) {
		return ops.Copy(ctx, st, h.clipboard, ops.CopyInput{ID: id})
	})
}

// HandleDelete handles POST /clips/{id}/delete and DELETE /clips/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st ops.Store, id int64) (any, error) {
		return ops.Delete(ctx, st, ops.DeleteInput{ID: id})
	})
}

// action runs a mutating operation and answers with JSON, an HX-Redirect or
// a plain redirect back to the list depending on the request.
func (h *Handlers) action(w http.ResponseWriter, r *http.Request, fn func(context.Context, ops.Store, int64) (any, error)) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	st, err := h.store()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := fn(r.Context(), st, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	target := redirectTarget(r)
	if isPartial(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseID reads the {id} path value.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.NewInvalidRequest("clip id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("clip id must be a positive integer")
	}
	return id, nil
}

// redirectTarget returns the local path given in the "next" form value, or
// the clip list. Absolute and protocol-relative URLs are ignored.
func redirectTarget(r *http.Request) string {
	next := r.FormValue("next")
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/clips"
}

// pageURL builds path with the list page's q and folder parameters.
func pageURL(path, query, folder string) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if folder != "" {
		v.Set("folder", folder)
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
	"github.com/aryannaik/nb-bookmarks/internal/index"
	"github.com/aryannaik/nb-bookmarks/internal/nb"
)

// Library is the part of ingest.Service the API needs.
type Library interface {
	Bookmarks(ctx context.Context) ([]bookmark.Bookmark, error)
	Tags(ctx context.Context) ([]bookmark.Tag, error)
	FilterByTag(ctx context.Context, tag string) ([]bookmark.Bookmark, error)
}

const tagsCacheKey = "tags"

type Handlers struct {
	lib    Library
	store  *index.Store
	tags   *cache.Cache
	logger *zap.Logger

	refreshMu sync.Mutex
	statusMu  sync.RWMutex
	lastErr   string
}

func NewHandlers(lib Library, store *index.Store, tagCacheTTL time.Duration, logger *zap.Logger) *Handlers {
	ttl := tagCacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Handlers{
		lib:    lib,
		store:  store,
		tags:   cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Refresh rebuilds the bookmark snapshot from nb. Concurrent calls are
// serialized; the tag cache is dropped on success. A failed or cancelled
// refresh leaves the previous snapshot in place.
func (h *Handlers) Refresh(ctx context.Context) error {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	return h.refresh(ctx)
}

func (h *Handlers) refresh(ctx context.Context) error {
	start := time.Now()
	bookmarks, err := h.lib.Bookmarks(ctx)

	// lastErr tracks nb failures, not cancelled callers.
	if ctx.Err() == nil {
		h.statusMu.Lock()
		if err != nil {
			h.lastErr = err.Error()
		} else {
			h.lastErr = ""
		}
		h.statusMu.Unlock()
	}

	if err != nil {
		h.logger.Error("refresh failed", zap.Error(err))
		return err
	}

	h.store.Replace(bookmarks)
	h.tags.Flush()
	h.logger.Info("refreshed bookmarks",
		zap.Int("bookmarks", len(bookmarks)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// ensureLoaded runs the first refresh. Requests that queue behind it reuse
// its snapshot.
func (h *Handlers) ensureLoaded(ctx context.Context) error {
	if h.loaded() {
		return nil
	}
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	if h.loaded() {
		return nil
	}
	return h.refresh(ctx)
}

func (h *Handlers) loaded() bool {
	return !h.store.UpdatedAt().IsZero()
}

func (h *Handlers) HandleBookmarks(w http.ResponseWriter, r *http.Request) {
	if tag := r.URL.Query().Get("tag"); tag != "" {
		h.handleByTag(w, r, tag)
		return
	}

	if err := h.ensureLoaded(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	bookmarks := h.store.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"bookmarks": bookmarks,
		"total":     len(bookmarks),
	})
}

// handleByTag answers from the snapshot once one is loaded and asks nb
// otherwise.
func (h *Handlers) handleByTag(w http.ResponseWriter, r *http.Request, tag string) {
	source := "snapshot"
	var bookmarks []bookmark.Bookmark
	if h.loaded() {
		bookmarks = h.store.ByTag(tag)
	} else {
		source = "nb"
		var err error
		bookmarks, err = h.lib.FilterByTag(r.Context(), tag)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if bookmarks == nil {
		bookmarks = []bookmark.Bookmark{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tag":       tag,
		"bookmarks": bookmarks,
		"total":     len(bookmarks),
		"source":    source,
	})
}

func (h *Handlers) HandleBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureLoaded(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if _, err := strconv.Atoi(id); err == nil {
		id = bookmark.IDPrefix + id
	}

	b, ok := h.store.GetByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "bookmark not found"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) HandleTags(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "" {
		if cached, ok := h.tags.Get(tagsCacheKey); ok {
			tags := cached.([]bookmark.Tag)
			writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "total": len(tags), "cached": true})
			return
		}
	}

	tags, err := h.lib.Tags(r.Context())
	if err != nil {
		h.logger.Error("tag aggregation failed", zap.Error(err))
		writeError(w, err)
		return
	}
	h.tags.SetDefault(tagsCacheKey, tags)

	writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "total": len(tags), "cached": false})
}

func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter 'q'"})
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	if err := h.ensureLoaded(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	results := h.store.Search(query, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

type statusResponse struct {
	BookmarkCount int    `json:"bookmarkCount"`
	UpdatedAt     string `json:"updatedAt"`
	NBOK          bool   `json:"nbOk"`
	LastError     string `json:"lastError,omitempty"`
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	updatedStr := ""
	if updatedAt := h.store.UpdatedAt(); !updatedAt.IsZero() {
		updatedStr = updatedAt.UTC().Format(time.RFC3339)
	}

	h.statusMu.RLock()
	lastErr := h.lastErr
	h.statusMu.RUnlock()

	writeJSON(w, http.StatusOK, statusResponse{
		BookmarkCount: h.store.Count(),
		UpdatedAt:     updatedStr,
		NBOK:          lastErr == "",
		LastError:     lastErr,
	})
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "refreshed", "total": h.store.Count()})
}

// writeError maps nb failures to 502 with a retry hint and anything else
// to 500.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, nb.ErrCollaborator) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "retryable": true})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

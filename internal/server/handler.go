package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/nao1215/sitediff/internal/cache"
	"github.com/nao1215/sitediff/internal/model"
)

// Lookuper resolves (tag, path) to a cached page. *cache.Cache implements it.
type Lookuper interface {
	Lookup(ctx context.Context, tag, path string) (cache.LookupResult, error)
}

type handler struct {
	lookup Lookuper
	logger *slog.Logger
}

// NewHandler returns the HTTP handler. logger may be nil for slog.Default.
func NewHandler(lookup Lookuper, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{lookup: lookup, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "OK")
	})
	mux.HandleFunc("GET /{tag}/{path...}", h.page)
	return mux
}

func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	path := r.PathValue("path")
	if !model.IsValidTag(tag) {
		http.NotFound(w, r)
		return
	}

	res, err := h.lookup.Lookup(r.Context(), tag, path)
	if err != nil {
		h.logger.Error("lookup failed", "tag", tag, "path", path, "error", err)
		http.Error(w, "cache lookup failed", http.StatusInternalServerError)
		return
	}

	switch res.Status {
	case http.StatusOK:
		w.Header().Set("ETag", res.ETag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == res.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, res.Content)
	case http.StatusBadGateway:
		http.Error(w, res.Error, http.StatusBadGateway)
	default:
		http.NotFound(w, r)
	}
}

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// New wires the API routes onto an http.Server listening on port.
func New(port string, handlers *Handlers, logger *zap.Logger) *http.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bookmarks", handlers.HandleBookmarks)
	mux.HandleFunc("GET /api/bookmarks/{id}", handlers.HandleBookmark)
	mux.HandleFunc("GET /api/tags", handlers.HandleTags)
	mux.HandleFunc("GET /api/search", handlers.HandleSearch)
	mux.HandleFunc("GET /api/status", handlers.HandleStatus)
	mux.HandleFunc("POST /api/refresh", handlers.HandleRefresh)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           withRequestID(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server configured", zap.String("addr", "http://localhost:"+port))
	return srv
}

package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/jsonutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ContentHandler serves poster and cover images from a directory. Names are
// resolved inside that directory only.
type ContentHandler struct {
	files  fs.FS
	logger *slog.Logger
}

func NewContentHandler(staticDir string, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		files:  os.DirFS(filepath.Join(staticDir, "content", "afisha")),
		logger: logger,
	}
}

func (h *ContentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	if name == "" {
		h.error(w, r, http.StatusBadRequest, "Filename is required")
		return
	}

	if !fs.ValidPath(name) {
		h.logger.Warn("rejected content path", "name", name)
		h.error(w, r, http.StatusNotFound, "File not found: "+name)
		return
	}

	info, err := fs.Stat(h.files, name)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.logger.Error("failed to stat content file", "name", name, "error", err)
		}

		h.error(w, r, http.StatusNotFound, "File not found: "+name)
		return
	}

	http.ServeFileFS(w, r, h.files, name)
}

func (h *ContentHandler) error(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	jsonutil.WriteJSON(w, status, resp, nil)
}

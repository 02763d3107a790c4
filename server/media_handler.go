package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// sanitizeFilename reduces an uploaded name to a bare filename, refusing
// anything that could escape the media directory.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return ""
	}
	return name
}

// mediaChunkHandler assembles uploads one chunk at a time. Offset zero
// creates or truncates the target file, any other offset appends to it; the
// client is responsible for sending chunks in order.
func mediaChunkHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MediaChunkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		name := sanitizeFilename(req.Name)
		if name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}
		if req.Offset < 0 {
			WriteError(w, http.StatusBadRequest, "offset must not be negative", "BAD_REQUEST")
			return
		}

		if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
			cfg.Logger.Error("failed to create media directory", "dir", cfg.MediaDir, "err", err)
			WriteError(w, http.StatusInternalServerError, "media directory unavailable", "INTERNAL_ERROR")
			return
		}

		flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
		if req.Offset == 0 {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}

		path := filepath.Join(cfg.MediaDir, name)
		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			cfg.Logger.Error("failed to open media file", "path", path, "err", err)
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		if _, err := f.Write(req.Data); err != nil {
			_ = f.Close()
			cfg.Logger.Error("failed to write media chunk", "path", path, "err", err)
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		info, err := f.Stat()
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, MediaChunkResponse{
			Name: name,
			Size: info.Size(),
			URL:  "media/" + name,
		})
	}
}

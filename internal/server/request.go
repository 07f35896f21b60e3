package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/connector"
)

// maxUploadMemory bounds how much of a multipart body stays in memory
// before spilling to temporary files.
const maxUploadMemory = 32 << 20

var errNoCommand = errors.New("missing cmd parameter")

// parseRequest maps HTTP parameters onto a protocol request. Both GET
// query parameters and POST form bodies are accepted; uploads arrive as
// multipart "upload[]" parts.
func parseRequest(r *http.Request) (*connector.Request, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	cmd := r.FormValue("cmd")
	if cmd == "" {
		return nil, errNoCommand
	}

	req := &connector.Request{
		Cmd:        cmd,
		Target:     r.FormValue("target"),
		Targets:    formList(r, "targets[]"),
		Dst:        r.FormValue("dst"),
		Name:       r.FormValue("name"),
		Content:    r.FormValue("content"),
		MimeFilter: firstOf(formList(r, "mimes[]")),
		Init:       r.FormValue("init") == "1",
		Tree:       r.FormValue("tree") == "1",
		Cut:        r.FormValue("cut") == "1",
		Download:   r.FormValue("download") == "1",
		Mode:       r.FormValue("mode"),
		Width:      formInt(r, "width"),
		Height:     formInt(r, "height"),
		X:          formInt(r, "x"),
		Y:          formInt(r, "y"),
		Degrees:    formInt(r, "degree"),
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["upload[]"] {
			req.Uploads = append(req.Uploads, uploadFrom(header))
		}
	}
	return req, nil
}

func uploadFrom(header *multipart.FileHeader) connector.Upload {
	return connector.Upload{
		Name: header.Filename,
		Size: header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func formList(r *http.Request, key string) []string {
	if r.Form == nil {
		return nil
	}
	return r.Form[key]
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.FormValue(key))
	return n
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("write response: %v", err)
	}
}

func copyStream(w http.ResponseWriter, stream *connector.FileStream) {
	if stream.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
	}
	if _, err := io.Copy(w, stream.Body); err != nil {
		logger.Warn("stream %s: %v", stream.Name, err)
	}
}

// Package server exposes the connector over HTTP.
//
// Three endpoints, fixed paths, no framework:
//
//	/connector  command endpoint (JSON in the elFinder protocol shape)
//	/tmb/<tok>  cached thumbnail bytes
//	/download   raw file content, inline or as attachment
//
// Routing stays on net/http: the surface is three fixed paths and the
// protocol itself is query-parameter based.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/connector"
)

// Server wraps the HTTP listener and its graceful shutdown.
type Server struct {
	conn            *connector.Connector
	listen          string
	shutdownTimeout time.Duration
}

func New(conn *connector.Connector, listen string, shutdownTimeout time.Duration) *Server {
	return &Server{
		conn:            conn,
		listen:          listen,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve blocks until ctx is cancelled, then drains in-flight requests
// for at most the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/connector", s.handleConnector)
	mux.HandleFunc("/tmb/", s.handleThumbnail)
	mux.HandleFunc("/download", s.handleDownload)

	httpServer := &http.Server{
		Addr:    s.listen,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", s.listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleConnector(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		writeJSON(w, connector.ErrorResponse{Error: "errUnknownCmd"})
		return
	}

	// The file command streams raw bytes and bypasses JSON dispatch.
	if req.Cmd == "file" {
		s.streamFile(w, r, req.Target, req.Download)
		return
	}

	writeJSON(w, s.conn.Dispatch(r.Context(), req))
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/tmb/")
	stream, err := s.conn.OpenThumbnail(r.Context(), token)
	if err != nil {
		// An unthumbnailable token yields an empty body, not an error
		// page; the client falls back to the generic icon.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	defer stream.Body.Close()

	w.Header().Set("Content-Type", stream.Mime)
	copyStream(w, stream)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.streamFile(w, r, r.FormValue("target"), r.FormValue("download") == "1")
}

func (s *Server) streamFile(w http.ResponseWriter, r *http.Request, token string, download bool) {
	stream, err := s.conn.OpenFile(r.Context(), token)
	if err != nil {
		if errors.Is(err, connector.ErrAccessDenied) {
			http.Error(w, "forbidden", http.StatusForbidden)
		} else {
			http.Error(w, "not found", http.StatusNotFound)
		}
		return
	}
	defer stream.Body.Close()

	if download {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="`+stream.Name+`"`)
	} else {
		w.Header().Set("Content-Type", stream.Mime)
	}
	copyStream(w, stream)
}

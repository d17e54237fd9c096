package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/torchgen/internal/config"
	"github.com/vk/torchgen/internal/ctxlog"
)

// maxDocumentBytes caps the body accepted by the compile endpoint.
const maxDocumentBytes = 1 << 20

// healthHandler reports that the server is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// compileHandler turns the posted envelope into Python source. Documents
// that fail to load are the client's fault (400); documents that load but
// describe something the generator cannot emit are unprocessable (422).
func (a *App) compileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logger := a.logger.With("remote_addr", r.RemoteAddr)

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusRequestEntityTooLarge)
		return
	}

	name := "request.json"
	if r.URL.Query().Get("format") == "hcl" || strings.Contains(r.Header.Get("Content-Type"), "hcl") {
		name = "request.hcl"
	}

	src, err := a.Compile(r.Context(), name, raw)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if isLoadError(err) {
			status = http.StatusBadRequest
		}
		logger.Info("Rejected model document.", "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	logger.Debug("Model compiled.", "bytes", len(src))
	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, src)
}

// isLoadError reports whether err came from reading the envelope rather than
// from generating its model.
func isLoadError(err error) bool {
	var (
		malformed    *config.MalformedDocumentError
		missing      *config.MissingFieldError
		unrecognized *config.UnrecognizedPacketError
	)
	return errors.As(err, &malformed) || errors.As(err, &missing) || errors.As(err, &unrecognized)
}

// Handler returns the compile server's routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/compile", a.compileHandler)
	return mux
}

// Serve runs the compile server until ctx is cancelled, then shuts it down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring compile server.")

	addr := fmt.Sprintf(":%d", a.config.ServePort)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Compile server starting", "address", fmt.Sprintf("http://localhost%s/compile", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("compile server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return a.closeServer()
}

func (a *App) closeServer() error {
	if a.httpServer == nil {
		a.logger.Debug("Compile server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("Shutting down compile server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Compile server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Compile server shut down gracefully.")
	return nil
}

package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pet-companion/internal/platform/logger"
)

// httpService corre el http.Server bajo el supervisor.
type httpService struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

func (h *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.log.Info("starting server", map[string]any{"addr": h.srv.Addr})
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// ctx ya está cancelado: el shutdown necesita su propio plazo.
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.shutdownTimeout)
	defer cancel()
	if err := h.srv.Shutdown(sctx); err != nil {
		h.log.Error("server shutdown failed", map[string]any{"err": err})
		return err
	}
	h.log.Info("server stopped", nil)
	return ctx.Err()
}

func (h *httpService) String() string { return "http-server" }

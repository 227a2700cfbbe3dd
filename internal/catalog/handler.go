// Package catalog serves the list of trained models, the detail of a single model and model deletion.
package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-sod/nbayes/internal/dispatcher"
	"github.com/go-sod/nbayes/internal/httputil"
	"github.com/go-sod/nbayes/internal/logging"
)

// Manager is the part of the dispatcher the catalog needs.
type Manager interface {
	dispatcher.Catalog
	dispatcher.Loader
}

func NewHandler(cfg *Config, manager Manager) (http.Handler, error) {
	return &handler{
		cfg:     cfg,
		manager: manager,
	}, nil
}

type handler struct {
	manager Manager
	cfg     *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	name := r.URL.Query().Get("name")
	switch {
	case r.Method == http.MethodGet && name == "":
		h.list(ctx, w)
	case r.Method == http.MethodGet:
		h.detail(ctx, w, name)
	case r.Method == http.MethodDelete:
		h.delete(ctx, w, name)
	default:
		httputil.CheckJSONRequest(ctx, w, r, http.MethodGet)
	}
}

func (h *handler) list(ctx context.Context, w http.ResponseWriter) {
	models, err := h.manager.Models(ctx)
	if err != nil {
		httputil.RespInternalError(ctx, w, "list models: %v", err)
		return
	}
	httputil.RespJSON(ctx, w, http.StatusOK, models)
}

func (h *handler) detail(ctx context.Context, w http.ResponseWriter, name string) {
	record, err := h.manager.Load(ctx, name)
	switch {
	case err == nil:
		httputil.RespJSON(ctx, w, http.StatusOK, record.Detail())
	case errors.Is(err, dispatcher.ErrNotFound):
		httputil.RespNotFound(ctx, w, "model %s not found", name)
	case errors.Is(err, dispatcher.ErrShuttingDown):
		httputil.RespUnavailable(ctx, w, "%v", err)
	default:
		httputil.RespInternalError(ctx, w, "load model %s: %v", name, err)
	}
}

func (h *handler) delete(ctx context.Context, w http.ResponseWriter, name string) {
	if name == "" {
		httputil.RespBadRequest(ctx, w, "model name is required")
		return
	}
	found, err := h.manager.Delete(ctx, name)
	if err != nil {
		httputil.RespInternalError(ctx, w, "delete model %s: %v", name, err)
		return
	}
	if !found {
		httputil.RespNotFound(ctx, w, "model %s not found", name)
		return
	}
	logging.FromContext(ctx).Infof("Deleted model %s", name)
	httputil.RespJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/dispatcher"
	"github.com/go-sod/nbayes/internal/httputil"
	"github.com/go-sod/nbayes/internal/logging"
	"github.com/go-sod/nbayes/internal/metrics"
)

type Query struct {
	Categorical []string  `json:"categorical"`
	Numerical   []float64 `json:"numerical"`
}

type Request struct {
	Model string  `json:"model"`
	Data  []Query `json:"data"`
}

// Result holds the class probabilities of one query. Prediction is empty when the result is
// indeterminate.
type Result struct {
	Probabilities map[string]float64 `json:"probabilities"`
	Prediction    string             `json:"prediction,omitempty"`
	Indeterminate bool               `json:"indeterminate"`
}

type Response struct {
	Model string   `json:"model"`
	ID    string   `json:"id"`
	Data  []Result `json:"data"`
}

func NewHandler(cfg *Config, loader dispatcher.Loader) (http.Handler, error) {
	return &handler{
		cfg:    cfg,
		loader: loader,
	}, nil
}

type handler struct {
	loader dispatcher.Loader
	cfg    *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if !httputil.CheckJSONRequest(ctx, w, r, http.MethodPost) {
		return
	}
	if !httputil.DecodeJSON(ctx, w, r, h.cfg.MaxBodyBytes, &req) {
		return
	}

	if len(req.Data) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, "data items is too large, max allowed len is %d", h.cfg.MaxDataItemsLen)
		return
	}

	record, err := h.loader.Load(ctx, req.Model)
	switch {
	case err == nil:
	case errors.Is(err, dispatcher.ErrNotFound):
		httputil.RespNotFound(ctx, w, "model %s not found", req.Model)
		return
	case errors.Is(err, dispatcher.ErrShuttingDown):
		httputil.RespUnavailable(ctx, w, "%v", err)
		return
	default:
		httputil.RespInternalError(ctx, w, "load model %s: %v", req.Model, err)
		return
	}

	points := make([]dataset.DataPoint, len(req.Data))
	for i, q := range req.Data {
		if points[i], err = record.Point(q.Categorical, q.Numerical); err != nil {
			httputil.RespBadRequest(ctx, w, "query %d: %v", i, err)
			return
		}
	}

	results := make([]Result, len(points))
	errGrp := errgroup.Group{}
	for i := range points {
		i := i
		errGrp.Go(func() error {
			conclusion, err := record.Model.Classify(points[i])
			if err != nil {
				return fmt.Errorf("classify query %d: %w", i, err)
			}
			res := Result{
				Probabilities: record.Labeled(conclusion),
				Indeterminate: conclusion.Indeterminate(),
			}
			if best := conclusion.MostLikely(); best >= 0 {
				res.Prediction = record.Classes.Categories[best]
			}
			results[i] = res
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		httputil.RespInternalError(ctx, w, "classify processing error, %v", err)
		return
	}

	var n int
	for _, res := range results {
		if res.Indeterminate {
			n++
		}
	}
	metrics.RecordClassified(ctx, record.Name, len(results), n)
	if n > 0 {
		logger.Debugf("Model %s: %d of %d queries are indeterminate", record.Name, n, len(results))
	}

	httputil.RespJSON(ctx, w, http.StatusOK, Response{
		Model: record.Name,
		ID:    record.ID.String(),
		Data:  results,
	})
}

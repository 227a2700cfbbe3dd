package train

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/dispatcher"
	"github.com/go-sod/nbayes/internal/httputil"
	"github.com/go-sod/nbayes/internal/logging"
	"github.com/go-sod/nbayes/internal/model"
	"github.com/go-sod/nbayes/pkg/rworker"
)

type Sample struct {
	Class       string    `json:"class"`
	Categorical []string  `json:"categorical"`
	Numerical   []float64 `json:"numerical"`
}

type Request struct {
	Name        string                         `json:"name"`
	Classes     dataset.CategoricalAttribute   `json:"classes"`
	Categorical []dataset.CategoricalAttribute `json:"categorical"`
	Numerical   []string                       `json:"numerical"`
	Data        []Sample                       `json:"data"`
}

// DataSet converts the labelled samples of the request into a dataset.
func (r *Request) DataSet() (*dataset.DataSet, error) {
	ds := dataset.New(r.Classes, r.Categorical, r.Numerical)
	for i, s := range r.Data {
		class, err := r.Classes.Index(s.Class)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if len(s.Categorical) != len(r.Categorical) {
			return nil, fmt.Errorf("sample %d: %w: %d categorical values, expected %d",
				i, dataset.ErrDimensionMismatch, len(s.Categorical), len(r.Categorical))
		}
		p := dataset.DataPoint{Categorical: make([]int, len(s.Categorical)), Numerical: s.Numerical}
		for f, v := range s.Categorical {
			if p.Categorical[f], err = r.Categorical[f].Index(v); err != nil {
				return nil, fmt.Errorf("sample %d: %w", i, err)
			}
		}
		if err := ds.Add(class, p); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return ds, nil
}

func NewHandler(cfg *Config, trainer dispatcher.Trainer) (http.Handler, error) {
	s := &handler{
		trainer: trainer,
		cfg:     cfg,
	}
	return s, nil
}

type handler struct {
	trainer dispatcher.Trainer
	cfg     *Config
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

	if req.Name == "" {
		httputil.RespBadRequest(ctx, w, "model name is required")
		return
	}
	if len(req.Data) > h.cfg.MaxDataItems {
		httputil.RespBadRequest(ctx, w, "data items is too large, max allowed len is %d", h.cfg.MaxDataItems)
		return
	}

	ds, err := req.DataSet()
	if err != nil {
		httputil.RespBadRequest(ctx, w, "%v", err)
		return
	}

	record, err := h.trainer.Train(ctx, req.Name, ds)
	switch {
	case err == nil:
	case errors.Is(err, bayes.ErrEmptyDataSet),
		errors.Is(err, bayes.ErrEmptyClass),
		errors.Is(err, model.ErrEmptyName):
		httputil.RespBadRequest(ctx, w, "%v", err)
		return
	case errors.Is(err, dispatcher.ErrShuttingDown),
		errors.Is(err, rworker.ErrWaitTimeout),
		errors.Is(err, rworker.ErrWaitInterrupted):
		httputil.RespUnavailable(ctx, w, "%v", err)
		return
	default:
		httputil.RespInternalError(ctx, w, "train %s: %v", req.Name, err)
		return
	}

	logger.Debugf("Train request for %s served", record.Name)
	httputil.RespJSON(ctx, w, http.StatusOK, record.Summary())
}

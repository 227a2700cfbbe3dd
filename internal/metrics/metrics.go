// Package metrics defines the OpenCensus measures of the service and exports them to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	StatusOK    = "ok"
	StatusError = "error"

	SourceMemory = "memory"
	SourceCache  = "cache"
	SourceStore  = "store"
)

var (
	MTrainLatency   = stats.Float64("nbayes/train_latency", "Time to fit a model", stats.UnitMilliseconds)
	MTrainSamples   = stats.Int64("nbayes/train_samples", "Samples per training request", stats.UnitDimensionless)
	MClassified     = stats.Int64("nbayes/classified", "Classified examples", stats.UnitDimensionless)
	MIndeterminate  = stats.Int64("nbayes/indeterminate", "Examples for which every class underflowed", stats.UnitDimensionless)
	MModelLoads     = stats.Int64("nbayes/model_loads", "Model lookups by source", stats.UnitDimensionless)
	MModelsResident = stats.Int64("nbayes/models_resident", "Models held in memory", stats.UnitDimensionless)

	KeyModel  = mustKey("model")
	KeyStatus = mustKey("status")
	KeySource = mustKey("source")
)

var latencyBounds = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000}

var Views = []*view.View{
	{
		Name:        "nbayes/train_latency",
		Measure:     MTrainLatency,
		Description: "Distribution of model fitting time",
		TagKeys:     []tag.Key{KeyStatus},
		Aggregation: view.Distribution(latencyBounds...),
	},
	{
		Name:        "nbayes/train_count",
		Measure:     MTrainLatency,
		Description: "Training requests by status",
		TagKeys:     []tag.Key{KeyStatus},
		Aggregation: view.Count(),
	},
	{
		Name:        "nbayes/train_samples",
		Measure:     MTrainSamples,
		Description: "Distribution of training set sizes",
		Aggregation: view.Distribution(10, 100, 1000, 10000, 100000, 1000000),
	},
	{
		Name:        "nbayes/classified_total",
		Measure:     MClassified,
		Description: "Classified examples by model",
		TagKeys:     []tag.Key{KeyModel},
		Aggregation: view.Sum(),
	},
	{
		Name:        "nbayes/indeterminate_total",
		Measure:     MIndeterminate,
		Description: "Indeterminate classifications by model",
		TagKeys:     []tag.Key{KeyModel},
		Aggregation: view.Sum(),
	},
	{
		Name:        "nbayes/model_loads_total",
		Measure:     MModelLoads,
		Description: "Model lookups by source",
		TagKeys:     []tag.Key{KeySource},
		Aggregation: view.Count(),
	},
	{
		Name:        "nbayes/models_resident",
		Measure:     MModelsResident,
		Description: "Models held in memory",
		Aggregation: view.LastValue(),
	},
}

func mustKey(name string) tag.Key {
	k, err := tag.NewKey(name)
	if err != nil {
		panic(err)
	}
	return k
}

var registerOnce sync.Once

// Register registers every view once per process.
func Register() error {
	var err error
	registerOnce.Do(func() {
		err = view.Register(Views...)
	})
	if err != nil {
		return fmt.Errorf("register views: %w", err)
	}
	return nil
}

type Config struct {
	Namespace string `envconfig:"NBAYES_METRICS_NAMESPACE" default:"nbayes"`
	Path      string `envconfig:"NBAYES_METRICS_PATH" default:"/metrics"`
}

// NewExporter registers the views and returns the Prometheus handler serving them.
func NewExporter(cfg *Config) (*prometheus.Exporter, error) {
	if err := Register(); err != nil {
		return nil, err
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: cfg.Namespace})
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	return exporter, nil
}

func RecordTrain(ctx context.Context, d time.Duration, samples int, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyStatus, status)},
		MTrainLatency.M(float64(d)/float64(time.Millisecond)))
	if err == nil {
		stats.Record(ctx, MTrainSamples.M(int64(samples)))
	}
}

func RecordClassified(ctx context.Context, model string, n, indeterminate int) {
	ms := []stats.Measurement{MClassified.M(int64(n))}
	if indeterminate > 0 {
		ms = append(ms, MIndeterminate.M(int64(indeterminate)))
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyModel, model)}, ms...)
}

func RecordLoad(ctx context.Context, source string) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeySource, source)}, MModelLoads.M(1))
}

func RecordResident(ctx context.Context, n int) {
	stats.Record(ctx, MModelsResident.M(int64(n)))
}

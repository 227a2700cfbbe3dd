// Package model describes a named, trained classifier together with the attribute metadata needed
// to turn labelled requests into examples.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/util"
)

var ErrEmptyName = errors.New("model: empty name")

// Record is a trained model and its metadata.
type Record struct {
	ID          uuid.UUID                      `json:"id"`
	Name        string                         `json:"name"`
	CreatedAt   time.Time                      `json:"createdAt"`
	Fingerprint string                         `json:"fingerprint"`
	Samples     int                            `json:"samples"`
	Classes     dataset.CategoricalAttribute   `json:"classes"`
	Categorical []dataset.CategoricalAttribute `json:"categorical"`
	Numerical   []string                       `json:"numerical"`
	Model       *bayes.Model                   `json:"-"`
}

// NewRecord wraps a model trained on ds.
func NewRecord(name string, ds *dataset.DataSet, m *bayes.Model, createdAt time.Time) (Record, error) {
	if name == "" {
		return Record{}, ErrEmptyName
	}
	return Record{
		ID:          uuid.New(),
		Name:        name,
		CreatedAt:   createdAt,
		Fingerprint: Fingerprint(ds),
		Samples:     ds.Len(),
		Classes:     ds.Predicting(),
		Categorical: ds.Categorical(),
		Numerical:   ds.Numerical(),
		Model:       m,
	}, nil
}

// Fingerprint identifies the training data of ds. Samples are hashed in class order.
func Fingerprint(ds *dataset.DataSet) string {
	var rows [][]float64
	for c := 0; c < ds.NumClasses(); c++ {
		for _, s := range ds.Samples(c) {
			row := make([]float64, 0, 1+s.NumCategorical()+s.NumNumerical())
			row = append(row, float64(c))
			for f := 0; f < s.NumCategorical(); f++ {
				row = append(row, float64(s.CategoricalValue(f)))
			}
			for g := 0; g < s.NumNumerical(); g++ {
				row = append(row, s.NumericalValue(g))
			}
			rows = append(rows, row)
		}
	}
	return util.HashVectors(rows...)
}

// Point encodes named categories and numerical values into an example for the model.
func (r Record) Point(categorical []string, numerical []float64) (dataset.DataPoint, error) {
	if len(categorical) != len(r.Categorical) {
		return dataset.DataPoint{}, fmt.Errorf("%w: %d categorical values, expected %d",
			dataset.ErrDimensionMismatch, len(categorical), len(r.Categorical))
	}
	if len(numerical) != len(r.Numerical) {
		return dataset.DataPoint{}, fmt.Errorf("%w: %d numerical values, expected %d",
			dataset.ErrDimensionMismatch, len(numerical), len(r.Numerical))
	}
	p := dataset.DataPoint{
		Categorical: make([]int, len(categorical)),
		Numerical:   append([]float64(nil), numerical...),
	}
	for i, v := range categorical {
		idx, err := r.Categorical[i].Index(v)
		if err != nil {
			return dataset.DataPoint{}, err
		}
		p.Categorical[i] = idx
	}
	return p, nil
}

// Labeled maps class probabilities to class labels.
func (r Record) Labeled(c *classifier.Conclusion) map[string]float64 {
	out := make(map[string]float64, len(c.Probabilities))
	for i, p := range c.Probabilities {
		out[r.Classes.Categories[i]] = p
	}
	return out
}

// Summary is the metadata of a record without the model.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Samples   int       `json:"samples"`
	Classes   []string  `json:"classes"`
}

func (r Record) Summary() Summary {
	return Summary{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		Samples:   r.Samples,
		Classes:   r.Classes.Categories,
	}
}

// Detail is the JSON form of a record including the fitted tables and distributions.
type Detail struct {
	Record
	Model bayes.Snapshot `json:"model"`
}

func (r Record) Detail() Detail {
	return Detail{Record: r, Model: r.Model.Snapshot()}
}

package model

import (
	"bytes"
	"fmt"
	"time"

	xdr "github.com/davecgh/go-xdr/xdr2"
	"github.com/google/uuid"

	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/util"
)

// codecVersion is written first so that stored records can be migrated.
const codecVersion int32 = 1

type wireAttribute struct {
	Name       string
	Categories []string
}

type wireDistribution struct {
	Name   string
	Params []float64
}

type wireRecord struct {
	Version        int32
	ID             string
	Name           string
	CreatedAt      int64
	Fingerprint    string
	Samples        int64
	Classes        wireAttribute
	Categorical    []wireAttribute
	Numerical      []string
	CategoryCounts []int32
	NumNumerical   int32
	Tables         [][][]float64
	Distributions  [][]wireDistribution
}

func toWireAttribute(a dataset.CategoricalAttribute) wireAttribute {
	return wireAttribute{Name: a.Name, Categories: a.Categories}
}

func fromWireAttribute(a wireAttribute) dataset.CategoricalAttribute {
	return dataset.CategoricalAttribute{Name: a.Name, Categories: a.Categories}
}

// Encode serializes r in XDR form.
func Encode(r Record) ([]byte, error) {
	if r.Model == nil {
		return nil, fmt.Errorf("encode record %s: no model", r.Name)
	}
	s := r.Model.Snapshot()
	w := wireRecord{
		Version:        codecVersion,
		ID:             r.ID.String(),
		Name:           r.Name,
		CreatedAt:      r.CreatedAt.UnixNano(),
		Fingerprint:    r.Fingerprint,
		Samples:        int64(r.Samples),
		Classes:        toWireAttribute(r.Classes),
		Categorical:    make([]wireAttribute, len(r.Categorical)),
		Numerical:      r.Numerical,
		CategoryCounts: make([]int32, len(s.CategoryCounts)),
		NumNumerical:   int32(s.NumNumerical),
		Tables:         s.Tables,
		Distributions:  make([][]wireDistribution, len(s.Distributions)),
	}
	for i := range r.Categorical {
		w.Categorical[i] = toWireAttribute(r.Categorical[i])
	}
	for i, k := range s.CategoryCounts {
		w.CategoryCounts[i] = int32(k)
	}
	for c := range s.Distributions {
		w.Distributions[c] = make([]wireDistribution, len(s.Distributions[c]))
		for g, d := range s.Distributions[c] {
			w.Distributions[c][g] = wireDistribution{Name: d.Name, Params: d.Params}
		}
	}

	buf := util.GetBytesBuffer()
	defer util.PutBytesBuffer(buf)
	if _, err := xdr.Marshal(buf, &w); err != nil {
		return nil, fmt.Errorf("xdr marshal record %s: %w", r.Name, err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// Decode restores a record written by Encode.
func Decode(data []byte) (Record, error) {
	var w wireRecord
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &w); err != nil {
		return Record{}, fmt.Errorf("xdr unmarshal record: %w", err)
	}
	if w.Version != codecVersion {
		return Record{}, fmt.Errorf("unsupported record version %d", w.Version)
	}
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return Record{}, fmt.Errorf("record %s id: %w", w.Name, err)
	}

	s := bayes.Snapshot{
		CategoryCounts: make([]int, len(w.CategoryCounts)),
		NumNumerical:   int(w.NumNumerical),
		Tables:         w.Tables,
		Distributions:  make([][]bayes.DistributionSnapshot, len(w.Distributions)),
	}
	for i, k := range w.CategoryCounts {
		s.CategoryCounts[i] = int(k)
	}
	for c := range w.Distributions {
		s.Distributions[c] = make([]bayes.DistributionSnapshot, len(w.Distributions[c]))
		for g, d := range w.Distributions[c] {
			s.Distributions[c][g] = bayes.DistributionSnapshot{Name: d.Name, Params: d.Params}
		}
	}
	m, err := bayes.FromSnapshot(s)
	if err != nil {
		return Record{}, fmt.Errorf("record %s model: %w", w.Name, err)
	}

	r := Record{
		ID:          id,
		Name:        w.Name,
		CreatedAt:   time.Unix(0, w.CreatedAt).UTC(),
		Fingerprint: w.Fingerprint,
		Samples:     int(w.Samples),
		Classes:     fromWireAttribute(w.Classes),
		Categorical: make([]dataset.CategoricalAttribute, len(w.Categorical)),
		Numerical:   w.Numerical,
		Model:       m,
	}
	for i := range w.Categorical {
		r.Categorical[i] = fromWireAttribute(w.Categorical[i])
	}
	if err := checkShape(r); err != nil {
		return Record{}, fmt.Errorf("record %s: %w", w.Name, err)
	}
	return r, nil
}

// checkShape verifies that the attribute labels line up with the model dimensions, so that label
// lookups by class or category index stay in range.
func checkShape(r Record) error {
	if got, want := r.Classes.NumCategories(), r.Model.NumClasses(); got != want {
		return fmt.Errorf("%d class labels for %d classes", got, want)
	}
	counts := r.Model.CategoryCounts()
	if len(r.Categorical) != len(counts) {
		return fmt.Errorf("%d categorical attributes for %d features", len(r.Categorical), len(counts))
	}
	for f, k := range counts {
		if got := r.Categorical[f].NumCategories(); got != k {
			return fmt.Errorf("attribute %s has %d categories, model expects %d", r.Categorical[f].Name, got, k)
		}
	}
	if len(r.Numerical) != r.Model.NumNumerical() {
		return fmt.Errorf("%d numerical names for %d features", len(r.Numerical), r.Model.NumNumerical())
	}
	return nil
}

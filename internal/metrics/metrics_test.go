package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
)

func TestRecordTrain(t *testing.T) {
	require.NoError(t, Register())
	ctx := context.Background()

	RecordTrain(ctx, 20*time.Millisecond, 100, nil)
	RecordTrain(ctx, 5*time.Millisecond, 0, errors.New("boom"))

	rows, err := view.RetrieveData("nbayes/train_count")
	require.NoError(t, err)
	statuses := map[string]bool{}
	for _, row := range rows {
		for _, tg := range row.Tags {
			statuses[tg.Value] = true
		}
	}
	assert.True(t, statuses[StatusOK])
	assert.True(t, statuses[StatusError])
}

func TestRecordClassified(t *testing.T) {
	require.NoError(t, Register())
	ctx := context.Background()

	RecordClassified(ctx, "metrics-test", 3, 1)

	rows, err := view.RetrieveData("nbayes/classified_total")
	require.NoError(t, err)
	var found bool
	for _, row := range rows {
		for _, tg := range row.Tags {
			if tg.Key == KeyModel && tg.Value == "metrics-test" {
				found = true
				sum, ok := row.Data.(*view.SumData)
				require.True(t, ok)
				assert.GreaterOrEqual(t, sum.Value, 3.0)
			}
		}
	}
	assert.True(t, found)
}

func TestNewExporter(t *testing.T) {
	exporter, err := NewExporter(&Config{Namespace: "nbayes_test"})
	require.NoError(t, err)
	assert.NotNil(t, exporter)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEvaluationErrorsByContext(t *testing.T) {
	before := testutil.ToFloat64(EvaluationErrors.WithLabelValues("metrics-test"))
	EvaluationErrors.WithLabelValues("metrics-test").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(EvaluationErrors.WithLabelValues("metrics-test")))
}

func TestFetchesTotalLabels(t *testing.T) {
	FetchesTotal.WithLabelValues("http", OutcomeOK).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(FetchesTotal.WithLabelValues("http", OutcomeOK)), 1.0)
}

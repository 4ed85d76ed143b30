package observability_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"gowinrt/internal/observability"
)

func TestObserveResolution(t *testing.T) {
	ok := testutil.ToFloat64(observability.Resolutions.WithLabelValues("class", observability.ResultOK))
	failed := testutil.ToFloat64(observability.Resolutions.WithLabelValues("unknown", observability.ResultError))

	observability.ObserveResolution("class", time.Now(), nil)
	observability.ObserveResolution("class", time.Now(), fmt.Errorf("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(observability.Resolutions.WithLabelValues("class", observability.ResultOK)))
	assert.Equal(t, failed+1, testutil.ToFloat64(observability.Resolutions.WithLabelValues("unknown", observability.ResultError)))
}

func TestObserveNativeCall(t *testing.T) {
	before := testutil.ToFloat64(observability.NativeCalls.WithLabelValues(observability.ResultError))
	observability.ObserveNativeCall(time.Now(), true)
	assert.Equal(t, before+1, testutil.ToFloat64(observability.NativeCalls.WithLabelValues(observability.ResultError)))
}

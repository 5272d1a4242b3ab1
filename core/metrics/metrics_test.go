package metrics

import (
	"context"
	"testing"
	"time"

	"consent-manager/core/catalog"
	"consent-manager/core/consent"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsWatcher(t *testing.T) {
	ctx := context.Background()
	m := New(prometheus.NewRegistry())

	cfg := &catalog.Config{Services: []catalog.Service{
		{Name: "analytics"},
		{Name: "essential", Required: catalog.Bool(true)},
	}}
	mgr, err := consent.New(ctx, cfg, consent.WithWatcher(m))
	require.NoError(t, err)

	// construction applies once and counts both services as changed
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Applies))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ServicesChanged))

	mgr.UpdateConsent("analytics", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConsentUpdates))

	_, err = mgr.SaveAndApplyConsents(ctx, "accept")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("accept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SavedDecisions.WithLabelValues("analytics", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Applies))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ServicesChanged))
}

func TestObserveRender(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRender(time.Now())

	count, err := testutil.GatherAndCount(reg, "consent_render_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

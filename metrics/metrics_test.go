package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wecode/proxyman/app"
	"github.com/wecode/proxyman/pmux"
)

func TestObservePick(t *testing.T) {
	m := NewMetrics()
	d := pmux.NewDescriptor("tg.sumoo.top", 808, "pdomo", "pdomo")

	m.ObservePick(d, false)
	m.ObservePick(d, false)
	m.ObservePick(d, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.picks.WithLabelValues("socks5://pdomo@tg.sumoo.top:808", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.picks.WithLabelValues("socks5://pdomo@tg.sumoo.top:808", "true")))
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics()
	m.ObservePick(pmux.NewDescriptor("96.44.187.55", 8080, "xfj", "xfj"), false)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	res, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, res.StatusCode)
	assert.Contains(t, string(raw),
		`proxyman_registry_picks_total{fallback="false",proxy="socks5://xfj@96.44.187.55:8080"} 1`)
	assert.NotContains(t, string(raw), "xfj:xfj")
}

func TestDisabledByDefault(t *testing.T) {
	m, runtime := app.MockStartSpin(NewMetrics())
	defer runtime.Stop()

	assert.False(t, m.enabled)
	assert.Equal(t, "localhost:2112", m.server.Addr)
}

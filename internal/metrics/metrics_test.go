package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CountersStartAtZero(t *testing.T) {
	m := New()

	m.Invocations.WithLabelValues("Create", "SUCCESS").Inc()
	m.Errors.WithLabelValues("lookup").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("Create", "SUCCESS")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Invocations.WithLabelValues("Delete", "SUCCESS")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors.WithLabelValues("lookup")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Invocations.WithLabelValues("Create", "SUCCESS").Inc()

	assert.Equal(t, 0.0, testutil.ToFloat64(b.Invocations.WithLabelValues("Create", "SUCCESS")))
}

func TestObserveDuration(t *testing.T) {
	m := New()
	ObserveDuration(m.LookupDuration, time.Now().Add(-20*time.Millisecond))

	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupDuration))
}

func TestPusher_DisabledIsNoop(t *testing.T) {
	p := NewPusher("", "client-secret-resource", "fn", New().Registry)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Push(context.Background()))
}

func TestPusher_PushesToGateway(t *testing.T) {
	var method, path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.Invocations.WithLabelValues("Create", "SUCCESS").Inc()
	p := NewPusher(srv.URL, "client-secret-resource", "dashboard-client-secret", m.Registry)

	require.NoError(t, p.Push(context.Background()))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/client-secret-resource/function/dashboard-client-secret", path)
	assert.True(t, strings.Contains(body, "client_secret_invocations_total"))
}

func TestPusher_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPusher(srv.URL, "client-secret-resource", "fn", New().Registry)

	err := p.Push(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push metrics")
}

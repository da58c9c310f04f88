package server

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winningticket/launcher/internal/logging"
)

func startHolding(t *testing.T) *Holding {
	t.Helper()

	h := NewHolding(0, logging.NewNopLogger())
	require.NoError(t, h.Start())
	t.Cleanup(func() { h.Release(context.Background()) })
	return h
}

func TestHolding_ServesUnavailable(t *testing.T) {
	h := startHolding(t)

	resp, err := http.Get("http://" + h.Addr() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "5", resp.Header.Get("Retry-After"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "starting")
}

func TestHolding_HealthEndpoint(t *testing.T) {
	h := startHolding(t)

	resp, err := http.Get("http://" + h.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHolding_ReleaseFreesPort(t *testing.T) {
	h := startHolding(t)
	addr := h.Addr()

	require.NoError(t, h.Release(context.Background()))

	_, err := http.Get("http://" + addr + "/")
	assert.Error(t, err)
}

func TestHolding_ReleaseBeforeStart(t *testing.T) {
	h := NewHolding(0, logging.NewNopLogger())
	assert.NoError(t, h.Release(context.Background()))
}

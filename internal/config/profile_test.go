package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidProfile(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"full", true},
		{"direct", true},
		{"", false},
		{"Full", false},
		{"canary", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsValidProfile(c.input), "IsValidProfile(%q)", c.input)
	}
}

func TestServerArgv(t *testing.T) {
	cfg := &Config{
		Port:           9000,
		Workers:        3,
		RequestTimeout: 120,
		WSGIApp:        DefaultWSGIApp,
	}

	prof, ok := ProfileByName("full")
	require.True(t, ok)

	assert.Equal(t, []string{
		"gunicorn",
		"config.wsgi:application",
		"--bind", "0.0.0.0:9000",
		"--workers", "3",
		"--timeout", "120",
		"--access-logfile", "-",
		"--error-logfile", "-",
	}, prof.ServerArgv(cfg))
}

func TestServerArgv_SameForBothProfiles(t *testing.T) {
	cfg := &Config{
		Port:           8000,
		Workers:        2,
		RequestTimeout: 180,
		WSGIApp:        DefaultWSGIApp,
	}

	full, _ := ProfileByName("full")
	direct, _ := ProfileByName("direct")
	assert.Equal(t, full.ServerArgv(cfg), direct.ServerArgv(cfg))
	assert.True(t, full.Prepares)
	assert.False(t, direct.Prepares)
}

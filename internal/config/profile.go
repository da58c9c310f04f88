package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type ProfileID string

const (
	// ProfileFull runs the whole preparation sequence before handing the
	// process over to gunicorn.
	ProfileFull ProfileID = "full"
	// ProfileDirect skips preparation and execs gunicorn immediately. This
	// mirrors the container variants that invoke the server command directly;
	// it is an alternative deployment profile, not a degraded mode.
	ProfileDirect ProfileID = "direct"
)

type ProfileConfig struct {
	ID          ProfileID
	DisplayName string
	// Prepares reports whether the profile runs migrations, static
	// collection and the admin seed before handoff.
	Prepares   bool
	ServerArgv func(cfg *Config) []string
}

var Profiles = map[ProfileID]ProfileConfig{
	ProfileFull: {
		ID:          ProfileFull,
		DisplayName: "Full boot",
		Prepares:    true,
		ServerArgv:  gunicornArgv,
	},
	ProfileDirect: {
		ID:          ProfileDirect,
		DisplayName: "Direct serve",
		Prepares:    false,
		ServerArgv:  gunicornArgv,
	},
}

func IsValidProfile(s string) bool {
	_, ok := Profiles[ProfileID(s)]
	return ok
}

func ProfileByName(s string) (ProfileConfig, bool) {
	p, ok := Profiles[ProfileID(s)]
	return p, ok
}

// gunicornArgv builds the server command line. Access and error logs go to
// the standard streams so the container log collector picks them up.
func gunicornArgv(cfg *Config) []string {
	return []string{
		"gunicorn",
		cfg.WSGIApp,
		"--bind", fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		"--workers", strconv.Itoa(cfg.Workers),
		"--timeout", strconv.Itoa(cfg.RequestTimeout),
		"--access-logfile", "-",
		"--error-logfile", "-",
	}
}

func profileNames() string {
	names := make([]string, 0, len(Profiles))
	for id := range Profiles {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envFixture struct {
	Name    string        `env:"NAME"`
	Retries int           `env:"RETRIES"`
	Wait    time.Duration `env:"WAIT"`
	Debug   bool          `env:"DEBUG"`
	Tags    []string      `env:"TAGS"`
	Nested  struct {
		Port string `env:"PORT"`
	}
	Untagged string
}

func mapLookup(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	var f envFixture
	f.Untagged = "kept"
	err := applyEnv(&f, mapLookup(map[string]string{
		"NAME":    "clubhub",
		"RETRIES": " 4 ",
		"WAIT":    "250ms",
		"DEBUG":   "true",
		"TAGS":    "a, b,,c",
		"PORT":    "9090",
	}))
	require.NoError(t, err)

	assert.Equal(t, "clubhub", f.Name)
	assert.Equal(t, 4, f.Retries)
	assert.Equal(t, 250*time.Millisecond, f.Wait)
	assert.True(t, f.Debug)
	assert.Equal(t, []string{"a", "b", "c"}, f.Tags)
	assert.Equal(t, "9090", f.Nested.Port)
	assert.Equal(t, "kept", f.Untagged)
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	var f envFixture
	err := applyEnv(&f, mapLookup(map[string]string{
		"RETRIES": "many",
		"WAIT":    "soon",
		"NAME":    "still-set",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRIES")
	assert.Contains(t, err.Error(), "WAIT")
	assert.Equal(t, "still-set", f.Name)
}

func TestApplyEnvRejectsNonPointer(t *testing.T) {
	assert.Error(t, applyEnv(envFixture{}, mapLookup(nil)))
}

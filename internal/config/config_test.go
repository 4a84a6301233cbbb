package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PYTHON_SERVICE", "http://py:8000/")
	t.Setenv("PYTHON_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "http://py:8000", cfg.PythonService)
	assert.Equal(t, 300*time.Second, cfg.PythonTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	assert.Equal(t, 90*time.Second, getDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "120")
	assert.Equal(t, 120*time.Second, getDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "soon")
	assert.Equal(t, time.Second, getDuration("X_DUR", time.Second))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a , ,b,"))
	assert.Nil(t, splitList(""))
}

package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	t.Parallel()

	e := NewEstimator()

	assert.Equal(t, 0, e.Count(""))
	assert.Greater(t, e.Count("hello world"), 0)

	// Longer text costs more tokens.
	short := e.Count("implement the login endpoint")
	long := e.Count(strings.Repeat("implement the login endpoint ", 20))
	assert.Greater(t, long, short)
}

func TestEstimateExchange(t *testing.T) {
	t.Parallel()

	e := NewEstimator()
	prompt := "Create a configuration file for the web server."
	response := "Done. I wrote config/server.yaml with sensible defaults."

	total := e.EstimateExchange(prompt, response)
	assert.Equal(t, e.Count(prompt)+e.Count(response), total)
	assert.Greater(t, total, 0)
}

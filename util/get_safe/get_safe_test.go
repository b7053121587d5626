package getsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	payload := map[string]any{
		"title":  "Returns",
		"count":  float64(7),
		"nested": map[string]any{"a": "b"},
		"score":  0.4,
	}

	assert.Equal(t, "Returns", String(payload, "title"))
	assert.Equal(t, "", String(payload, "count"))
	assert.Equal(t, 7, Int(payload, "count"))
	assert.Equal(t, 0, Int(payload, "title"))
	assert.Equal(t, map[string]any{"a": "b"}, Map(payload, "nested"))
	assert.Nil(t, Map(payload, "missing"))
	assert.Equal(t, map[string]string{"title": "Returns"}, Strings(payload))
}

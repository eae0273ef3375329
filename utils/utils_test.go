package utils_test

import (
	"testing"

	"github.com/effective-security/honeybadger-mcp/utils"
	"github.com/stretchr/testify/assert"
)

func Test_CleanJSON(t *testing.T) {
	raw := "\n```json\n\n{\"fault_id\": \"abc123\", \"limit\": 5}\n\n```\n\n"
	clean := utils.CleanJSON([]byte(raw))

	expected := "{\"fault_id\": \"abc123\", \"limit\": 5}"
	assert.Equal(t, expected, string(clean))

	raw = "Here you go:\n```json\n\n[{\"q\": \"RuntimeError\"}]\n```\n\n"
	clean = utils.CleanJSON([]byte(raw))

	expected = "[{\"q\": \"RuntimeError\"}]"
	assert.Equal(t, expected, string(clean))

	// already clean input is returned as is
	expected = "{\"q\": \"RuntimeError\"}"
	assert.Equal(t, expected, string(utils.CleanJSON([]byte(expected))))
}

func Test_BackticksJSON(t *testing.T) {
	js := "{\"q\": \"RuntimeError\"}"
	wrapped := utils.BackticksJSON(js)

	expected := "\n```json\n{\"q\": \"RuntimeError\"}\n```\n"
	assert.Equal(t, expected, wrapped)
}

func Test_ToJSON(t *testing.T) {
	val := map[string]any{"order": "recent"}
	assert.Equal(t, "{\"order\":\"recent\"}", utils.ToJSON(val))
	assert.Equal(t, "{\n\t\"order\": \"recent\"\n}", utils.ToJSONIndent(val))
	assert.Equal(t, "order: recent\n", utils.ToYAML(val))
}

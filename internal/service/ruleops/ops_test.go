package ruleops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, name string) *Tool {
	t.Helper()
	tool, ok := Lookup(name)
	require.True(t, ok, "tool %s not in catalog", name)
	return tool
}

func TestTrimWhitespace(t *testing.T) {
	tool := mustLookup(t, ToolTrimWhitespace)

	result, err := tool.Run(Value{Text: "  John Smith  "}, 0, "")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", result.Value.Text)
	assert.True(t, result.Valid)

	_, err = tool.Run(Value{Amount: 12, Numeric: true}, 0, "")
	assert.Error(t, err)
}

func TestStripSpecialChars(t *testing.T) {
	tool := mustLookup(t, ToolStripSpecialChars)

	result, err := tool.Run(Value{Text: "AB-12_3!!"}, 0, "")
	require.NoError(t, err)
	assert.Equal(t, "AB123", result.Value.Text)
}

func TestFormatAccountNumber(t *testing.T) {
	tool := mustLookup(t, ToolFormatAccountNumber)

	tests := []struct {
		name       string
		account    string
		clientName string
		want       string
	}{
		{"abc client gets dash", "1234567", "ABC", "123-4567"},
		{"other client unchanged", "1234567", "XYZ", "1234567"},
		{"short account unchanged", "123", "ABC", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Run(Value{Text: tt.account}, 0, tt.clientName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Value.Text)
		})
	}
}

func TestRequired(t *testing.T) {
	tool := mustLookup(t, ToolRequired)

	result, err := tool.Run(Value{Text: "   "}, 0, "")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	result, err = tool.Run(Value{Text: "ok"}, 0, "")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = tool.Run(Value{Amount: 0, Numeric: true}, 0, "")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestMaxLength(t *testing.T) {
	tool := mustLookup(t, ToolMaxLength)

	result, err := tool.Run(Value{Text: "abcdef"}, 5, "")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	result, err = tool.Run(Value{Text: "abcde"}, 5, "")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestMinAmount(t *testing.T) {
	tool := mustLookup(t, ToolMinAmount)

	tests := []struct {
		name   string
		amount float64
		arg    float64
		valid  bool
	}{
		{"below threshold", 9.99, 10, false},
		{"at threshold", 10, 10, true},
		{"above threshold", 25, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Run(Value{Amount: tt.amount, Numeric: true}, tt.arg, "")
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
		})
	}

	_, err := tool.Run(Value{Text: "10"}, 10, "")
	assert.Error(t, err, "min_amount on a text value must be rejected")
}

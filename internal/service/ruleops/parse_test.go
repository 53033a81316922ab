package ruleops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField FieldName
		wantTool  string
		wantArg   float64
		wantOK    bool
	}{
		{
			name:      "trim customer name",
			content:   "Trim whitespace from the customer name",
			wantField: FieldCustomerName,
			wantTool:  ToolTrimWhitespace,
			wantOK:    true,
		},
		{
			name:      "strip special chars from account",
			content:   "Remove special characters from the customer account",
			wantField: FieldCustomerAccount,
			wantTool:  ToolStripSpecialChars,
			wantOK:    true,
		},
		{
			name:      "format account number",
			content:   "Format the account number with a dash after the third character",
			wantField: FieldCustomerAccount,
			wantTool:  ToolFormatAccountNumber,
			wantOK:    true,
		},
		{
			name:      "max length with argument",
			content:   "Customer name must not exceed maximum length of 50 characters",
			wantField: FieldCustomerName,
			wantTool:  ToolMaxLength,
			wantArg:   50,
			wantOK:    true,
		},
		{
			name:      "min amount with argument",
			content:   "Amount paid must be at least 10",
			wantField: FieldAmountPaid,
			wantTool:  ToolMinAmount,
			wantArg:   10,
			wantOK:    true,
		},
		{
			name:      "required balance",
			content:   "Balance amount is required",
			wantField: FieldBalanceAmount,
			wantTool:  ToolRequired,
			wantOK:    true,
		},
		{
			name:      "name with account binds to account",
			content:   "Trim whitespace from the account holder name",
			wantField: FieldCustomerAccount,
			wantTool:  ToolTrimWhitespace,
			wantOK:    true,
		},
		{
			name:    "no recognizable field",
			content: "Always send a confirmation email",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := Parse(tt.content)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantField, parsed.Field)
			assert.Equal(t, tt.wantTool, parsed.Tool.Name)
			if tt.wantArg != 0 {
				assert.True(t, parsed.HasArg)
				assert.Equal(t, tt.wantArg, parsed.Arg)
			}
		})
	}
}

// A recognizable field with an unrecognizable operation keeps the field,
// so the engine can record the failure against it.
func TestParseKeepsFieldOnUnknownOperation(t *testing.T) {
	parsed, ok := Parse("Customer name should be translated to French")
	assert.False(t, ok)
	assert.Equal(t, FieldCustomerName, parsed.Field)
	assert.Nil(t, parsed.Tool)
}

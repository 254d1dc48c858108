package writeaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emailTemplate = `{"customerId": "{{customer_id}}", "email": "{{email}}", "channel": "chat"}`

func TestRenderSubstitutesVariables(t *testing.T) {
	out := Render(emailTemplate, map[string]string{
		"customer_id": "42",
		"email":       "maria@example.com",
	})

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "42", payload["customerId"])
	assert.Equal(t, "maria@example.com", payload["email"])
	assert.Equal(t, "chat", payload["channel"])
}

func TestRenderKeepsUnresolvedPlaceholders(t *testing.T) {
	out := Render(emailTemplate, map[string]string{"customer_id": "42"})
	assert.Contains(t, out, "{{email}}")
	assert.NotContains(t, out, "{{customer_id}}")
}

func TestRenderToleratesWhitespaceInsideBraces(t *testing.T) {
	out := Render(`{"v": "{{ nome }}"}`, map[string]string{"nome": "João"})
	assert.Equal(t, `{"v": "João"}`, out)
}

func TestValidateAcceptsWellFormedTemplate(t *testing.T) {
	require.NoError(t, Validate(emailTemplate))
}

func TestValidateRejectsBrokenJson(t *testing.T) {
	err := Validate(`{"customerId": {{customer_id}}`)
	require.Error(t, err)
	_, ok := err.(TemplateValidationError)
	require.True(t, ok)
}

func TestExtractVariablesDistinctFirstSeen(t *testing.T) {
	template := `{"a": "{{customer_id}}", "b": "{{email}}", "c": "{{customer_id}}"}`
	assert.Equal(t, []string{"customer_id", "email"}, ExtractVariables(template))
}

func TestExtractVariablesEmptyTemplate(t *testing.T) {
	assert.Empty(t, ExtractVariables(`{"static": true}`))
}

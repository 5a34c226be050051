package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate(t *testing.T) {
	t.Parallel()

	tmpl, err := New("translate", `translate this text from {{.inputLang}} to {{.outputLang | upper}}:{{"\n"}}{{.input | trim}}`)
	require.NoError(t, err)

	value, err := tmpl.Format(map[string]any{
		"inputLang":  "English",
		"outputLang": "Chinese",
		"input":      "  I love programming ",
	})
	require.NoError(t, err)
	assert.Equal(t, "translate this text from English to CHINESE:\nI love programming", value)

	_, err = tmpl.Format(map[string]any{
		"inputLang":  "English",
		"outputLang": "Chinese",
	})
	require.Error(t, err)

	_, err = New("broken", "{{.input")
	assert.Error(t, err)
	assert.Panics(t, func() { Must("broken", "{{end}}") })
}

func TestChatTemplate(t *testing.T) {
	t.Parallel()

	ct, err := NewChatTemplate("plan",
		`Tools:
{{- range .tools }}
- {{ . }}
{{- end }}
`,
		`{{ .query }}`)
	require.NoError(t, err)

	system, user, err := ct.Format(map[string]any{
		"tools": []string{"math", "research"},
		"query": "solve 2+2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tools:\n- math\n- research", system)
	assert.Equal(t, "solve 2+2", user)

	_, _, err = ct.Format(map[string]any{"tools": []string{}})
	assert.Error(t, err)

	_, err = NewChatTemplate("x", "{{", "")
	assert.Error(t, err)
	_, err = NewChatTemplate("x", "", "{{")
	assert.Error(t, err)
}

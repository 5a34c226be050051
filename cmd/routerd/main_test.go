package main

import (
	"bytes"
	"testing"

	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestToolsCmd(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")

	var out bytes.Buffer
	cmd := newRootCmd(&bytes.Buffer{}, &out)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tools"})
	require.NoError(t, cmd.Execute())

	var list []struct {
		Name    string   `yaml:"name"`
		Aliases []string `yaml:"aliases"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &list))
	require.Len(t, list, 4)
	assert.Equal(t, "research", list[0].Name)
	assert.Equal(t, []string{"research_agent"}, list[0].Aliases)
	assert.Equal(t, "finance", list[3].Name)
}

func TestToolsCmd_BadConfig(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"tools", "--config", "testdata/missing.yaml"})
	require.Error(t, cmd.Execute())
}

func TestServeCmd_BadFormat(t *testing.T) {
	var errOut bytes.Buffer
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"serve", "--format", "xml"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, xlog.DEBUG, logLevel("debug"))
	assert.Equal(t, xlog.CRITICAL, logLevel("CRITICAL"))
	assert.Equal(t, xlog.INFO, logLevel(""))
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourcesCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"resources"})

	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Mental Health Resources")
	assert.Contains(t, text, "Understanding Anxiety")
	assert.Contains(t, text, "PDF Guide")
	assert.Contains(t, text, "1-800-273-8255")
	assert.Contains(t, text, "Text HOME to 741741")
	assert.Contains(t, text, "Disclaimer:")
}

func TestServeRequiresCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

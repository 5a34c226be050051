package session_test

import (
	"context"
	"testing"

	"github.com/effective-security/toolrouter/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, session.FromContext(ctx))
	assert.Empty(t, session.ID(ctx))

	sc := session.New("s-1")
	assert.Equal(t, "s-1", sc.ID())
	assert.NotEmpty(t, sc.RunID())

	ctx = session.WithContext(ctx, sc)
	require.NotNil(t, session.FromContext(ctx))
	assert.Equal(t, "s-1", session.ID(ctx))

	generated := session.New("  ")
	assert.NotEmpty(t, generated.ID())
	assert.NotEqual(t, generated.ID(), session.New("").ID())
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, session.DefaultID, session.OrDefault(""))
	assert.Equal(t, session.DefaultID, session.OrDefault(" "))
	assert.Equal(t, "abc", session.OrDefault("abc"))
}

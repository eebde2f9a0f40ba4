package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quandary-app/quandary/internal/apperr"
)

func TestRequireOwner(t *testing.T) {
	g := NewGuard()

	assert.NoError(t, g.RequireOwner("u1", "u1", "edit this post"))

	err := g.RequireOwner("u2", "u1", "edit this post")
	require.Error(t, err)
	assert.True(t, apperr.IsForbidden(err))
	assert.Contains(t, err.Error(), "you are not allowed to edit this post")
}

func TestRequireAnswerOwner_Enforced(t *testing.T) {
	g := NewGuard()
	require.True(t, g.RequireAnswerOwnership)

	assert.NoError(t, g.RequireAnswerOwner("u1", "u1", "delete this answer"))
	assert.True(t, apperr.IsForbidden(g.RequireAnswerOwner("u2", "u1", "delete this answer")))
}

func TestRequireAnswerOwner_Permissive(t *testing.T) {
	g := &Guard{RequireAnswerOwnership: false}

	// Legacy mode skips the check entirely.
	assert.NoError(t, g.RequireAnswerOwner("u2", "u1", "delete this answer"))
}

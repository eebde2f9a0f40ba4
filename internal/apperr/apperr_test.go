package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(KindNotFound, "could not find a post for the provided id")
	assert.Equal(t, "NOT_FOUND: could not find a post for the provided id", err.Error())
}

func TestNewf_FormatsMessage(t *testing.T) {
	err := Newf(KindForbidden, "you are not allowed to %s", "edit this post")
	assert.Equal(t, "FORBIDDEN: you are not allowed to edit this post", err.Error())
}

func TestWrap_KeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("disk I/O error on page 7")
	err := Wrap(KindStorage, "could not update the post", cause)

	assert.NotContains(t, err.Error(), "page 7")
	assert.ErrorIs(t, err, cause)
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	inner := New(KindValidation, "title must not be empty")
	outer := fmt.Errorf("create post: %w", inner)

	assert.Equal(t, KindValidation, KindOf(outer))
}

func TestKindOf_NonAppError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		kind Kind
		pred func(error) bool
	}{
		{KindNotFound, IsNotFound},
		{KindForbidden, IsForbidden},
		{KindValidation, IsValidation},
		{KindConflict, IsConflict},
		{KindStorage, IsStorage},
		{KindSideEffect, IsSideEffect},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := New(tc.kind, "msg")
			require.True(t, tc.pred(err))

			for _, other := range cases {
				if other.kind == tc.kind {
					continue
				}
				assert.False(t, other.pred(err), "%s predicate matched %s", other.kind, tc.kind)
			}
		})
	}
}

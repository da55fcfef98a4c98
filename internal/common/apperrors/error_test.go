package apperrors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("TestError", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErr)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)

		err := errors.New("error")
		ErrWrappedErr = ErrFirstLevel.Err(err)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)

		ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)
	})
}

func TestErrorStatusCode(t *testing.T) {
	ErrStore := New("store error").SetStatusCode(http.StatusInternalServerError)
	assert.Equal(t, http.StatusInternalServerError, ErrStore.StatusCode())

	// Derived errors inherit the status code until overridden.
	ErrMissing := ErrStore.New("row not found")
	assert.Equal(t, http.StatusInternalServerError, ErrMissing.StatusCode())
	ErrMissing = ErrMissing.SetStatusCode(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, ErrMissing.StatusCode())
	assert.ErrorIs(t, ErrMissing, ErrStore)
}

func TestErrorAllExpansion(t *testing.T) {
	base := New("issue failed").SetExpandError(true)
	wrapped := base.Err(errors.New("counter lost"), errors.New("lock timeout"))
	assert.Equal(t, "issue failed: counter lost;lock timeout", wrapped.ErrorAll())

	compact := New("issue failed").Err(errors.New("counter lost"))
	assert.Equal(t, "issue failed", compact.ErrorAll())
}

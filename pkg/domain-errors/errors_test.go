package domainerrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct coded error", func(t *testing.T) {
		err := New(CodeNotEnrolled, "student 7 is not enrolled in group 3")
		assert.True(t, HasCode(err, CodeNotEnrolled))
		assert.False(t, HasCode(err, CodeAlreadyMarked))
	})

	t.Run("matches through fmt.Errorf wrapping", func(t *testing.T) {
		inner := New(CodeAlreadyMarked, "attendance already recorded")
		err := fmt.Errorf("mark attendance: %w", inner)
		assert.True(t, HasCode(err, CodeAlreadyMarked))
	})

	t.Run("uncoded error matches nothing", func(t *testing.T) {
		assert.False(t, HasCode(fmt.Errorf("plain"), CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("extracts code", func(t *testing.T) {
		assert.Equal(t, CodeScheduleConflict, CodeOf(New(CodeScheduleConflict, "windows collide")))
	})

	t.Run("defaults uncoded errors to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("boom")))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Wrap(CodeStoreFailure, "save attendance record", cause)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "save attendance record")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeInvalidConfig, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeNotEnrolled, http.StatusUnprocessableEntity},
		{CodeNoMatchingWindow, http.StatusUnprocessableEntity},
		{CodeAlreadyMarked, http.StatusConflict},
		{CodeScheduleConflict, http.StatusConflict},
		{CodeStoreFailure, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.code), "code %s", tt.code)
	}
}

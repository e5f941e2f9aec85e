package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDataUnavailableError(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, cause := os.ReadFile("/does/not/exist.json")
		err := NewDataUnavailableError("/does/not/exist.json", cause)

		assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
		assert.Equal(t, CodeDataUnavailable, err.Code)
		assert.Equal(t, "IFRS 17 data file not found: /does/not/exist.json", err.Message)
		assert.Equal(t, "/does/not/exist.json", err.Details["path"])
		assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	})

	t.Run("unreadable file", func(t *testing.T) {
		err := NewDataUnavailableError("data.json", fmt.Errorf("bad json"))
		assert.True(t, strings.HasPrefix(err.Message, "IFRS 17 data file unreadable"))
	})
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "categorized passes through",
			err:        NewNotFoundError("user", "7"),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "wrapped categorized error is found",
			err:        fmt.Errorf("loading: %w", NewDataUnavailableError("x.json", fs.ErrNotExist)),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeDataUnavailable,
		},
		{
			name:       "plain error becomes internal",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, GetHTTPStatusCode(tt.err))
		})
	}

	assert.Nil(t, Categorize(nil))
}

func TestErrorPredicates(t *testing.T) {
	unavailable := fmt.Errorf("wrap: %w", NewDataUnavailableError("x.json", fs.ErrNotExist))

	assert.True(t, IsDataUnavailable(unavailable))
	assert.False(t, IsDataUnavailable(fmt.Errorf("other")))
	assert.True(t, IsSystemError(unavailable))
	assert.False(t, IsUserError(unavailable))

	assert.True(t, IsNotFound(NewNotFoundError("user", "1")))
	assert.True(t, IsUserError(NewInvalidParameterError("cohort_year", "must be an integer")))
	assert.True(t, IsUserError(NewConflictError("Email already registered")))
}

func TestCategorizedErrorMessage(t *testing.T) {
	err := NewDatabaseError("create user", fmt.Errorf("connection refused"))
	assert.Equal(t, "DATABASE_ERROR: database error during create user (caused by: connection refused)", err.Error())

	plain := NewForbiddenError("Admin access required")
	assert.Equal(t, "FORBIDDEN: Admin access required", plain.Error())
}

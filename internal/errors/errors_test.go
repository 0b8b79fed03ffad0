package appErrors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
)

func TestIsNotFound(t *testing.T) {
	err := appErrors.NewEmailNotFound("abc")
	assert.True(t, appErrors.IsNotFound(err))
	assert.True(t, appErrors.IsNotFound(fmt.Errorf("update email: %w", err)))
	assert.False(t, appErrors.IsNotFound(fmt.Errorf("connection refused")))
	assert.EqualError(t, err, "email with ID abc not found")
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Email not found", appErrors.NotFoundMessage)
}

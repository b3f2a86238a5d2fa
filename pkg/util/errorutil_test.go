package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("register: %w", NewDuplicate(MsgEntryNoExists, errors.New("E11000")))
		de := ToDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, CodeDuplicate, de.Code)
		assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
		assert.Equal(t, MsgEntryNoExists, de.Message)
	})

	t.Run("fiber error", func(t *testing.T) {
		de := ToDomainError(fiber.ErrNotFound)
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("unknown error hides details", func(t *testing.T) {
		cause := errors.New("connection refused")
		de := ToDomainError(cause)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, MsgServerError, de.Message)
		assert.ErrorIs(t, de, cause)
	})
}

func TestUnauthorizedMessageIsUndifferentiated(t *testing.T) {
	expired := ToDomainError(NewUnauthorized(errors.New("token is expired")))
	forged := ToDomainError(NewUnauthorized(errors.New("signature is invalid")))
	assert.Equal(t, expired.Message, forged.Message)
	assert.Equal(t, MsgSessionExpired, expired.Message)
}

package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	t.Run("10 digit number gets the default country code", func(t *testing.T) {
		got, err := NormalizePhone("9876543210", "+91")
		assert.NoError(t, err)
		assert.Equal(t, "+919876543210", got)
	})

	t.Run("formatting characters are stripped", func(t *testing.T) {
		got, err := NormalizePhone("(987) 654-3210", "+91")
		assert.NoError(t, err)
		assert.Equal(t, "+919876543210", got)
	})

	t.Run("plus prefixed input keeps its digits verbatim", func(t *testing.T) {
		got, err := NormalizePhone("+91 98765 43210", "+1")
		assert.NoError(t, err)
		assert.Equal(t, "+919876543210", got)
	})

	t.Run("non 10 digit input is prefixed with plus as-is", func(t *testing.T) {
		got, err := NormalizePhone("4420712345678", "+91")
		assert.NoError(t, err)
		assert.Equal(t, "+4420712345678", got)
	})

	t.Run("leading zero country code is rejected", func(t *testing.T) {
		_, err := NormalizePhone("+0123456789", "+91")
		assert.ErrorIs(t, err, ErrBadPhone)
	})

	t.Run("empty and non numeric input is rejected", func(t *testing.T) {
		_, err := NormalizePhone("", "+91")
		assert.ErrorIs(t, err, ErrBadPhone)

		_, err = NormalizePhone("call me", "+91")
		assert.ErrorIs(t, err, ErrBadPhone)
	})

	t.Run("too short and too long results are rejected", func(t *testing.T) {
		_, err := NormalizePhone("+1234567", "+91")
		assert.ErrorIs(t, err, ErrBadPhone)

		_, err = NormalizePhone("+1234567890123456", "+91")
		assert.ErrorIs(t, err, ErrBadPhone)
	})

	t.Run("all valid 10 digit inputs take the configured code", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			digits := fmt.Sprintf("98765%05d", i)
			got, err := NormalizePhone(digits, "+44")
			assert.NoError(t, err)
			assert.Equal(t, "+44"+digits, got)
		}
	})
}

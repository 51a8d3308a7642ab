package handlers

import (
	"fmt"
	"testing"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDFromCallback(t *testing.T) {
	id, err := parseIDFromCallback("book:123", CallbackBook)
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)

	_, err = parseIDFromCallback("cancel_booking:1", CallbackBook)
	assert.Error(t, err)

	_, err = parseIDFromCallback("book:abc", CallbackBook)
	assert.Error(t, err)
}

func TestUserErrorText(t *testing.T) {
	assert.Contains(t, userErrorText(fmt.Errorf("reserve: %w", model.ErrSlotFull)), "мест больше нет")
	assert.Contains(t, userErrorText(model.ErrSlotInPast), "уже прошло")
	assert.Contains(t, userErrorText(model.ErrBookingNotFound), "не найдена")

	text := userErrorText(fmt.Errorf("%w: email must be a valid email", model.ErrValidation))
	assert.Contains(t, text, "email must be a valid email")
	assert.NotContains(t, text, "validation failed")

	assert.Contains(t, userErrorText(fmt.Errorf("db down")), "Попробуйте позже")
}

func TestParseContact(t *testing.T) {
	assert.Equal(t, model.Requester{}, parseContact("-"))
	assert.Equal(t, model.Requester{Email: "anna@example.com"}, parseContact("anna@example.com"))
	assert.Equal(t, model.Requester{Phone: "+7 999 000-11-22"}, parseContact("+7 999 000-11-22"))
}

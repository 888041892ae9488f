package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Limit     int    `json:"limit" validate:"min=1"`
}

// TestCheck_Valid verifies that a valid struct produces no errors.
func TestCheck_Valid(t *testing.T) {
	v := New()

	errs := v.Check(sampleRequest{FirstName: "John", Email: "john@example.com", Limit: 20}, "en")
	assert.Nil(t, errs)
}

// TestCheck_FieldNamesFromJSONTags verifies errors carry wire field names.
func TestCheck_FieldNamesFromJSONTags(t *testing.T) {
	v := New()

	errs := v.Check(sampleRequest{Email: "not-an-email", Limit: 1}, "en")
	require.Len(t, errs, 2)

	assert.Equal(t, "firstName", errs[0].Field)
	assert.Equal(t, "required", errs[0].Type)
	assert.NotEmpty(t, errs[0].Msg)

	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "email", errs[1].Type)
}

// TestCheck_RussianLocale verifies that ru messages differ from en ones.
func TestCheck_RussianLocale(t *testing.T) {
	v := New()

	enErrs := v.Check(sampleRequest{Email: "a@b.co", Limit: 1}, "en")
	ruErrs := v.Check(sampleRequest{Email: "a@b.co", Limit: 1}, "ru")
	require.Len(t, enErrs, 1)
	require.Len(t, ruErrs, 1)

	assert.Equal(t, enErrs[0].Field, ruErrs[0].Field)
	assert.Equal(t, enErrs[0].Type, ruErrs[0].Type)
	assert.NotEqual(t, enErrs[0].Msg, ruErrs[0].Msg)
}

// TestCheck_UnknownLocaleFallsBack verifies fallback to the default catalog.
func TestCheck_UnknownLocaleFallsBack(t *testing.T) {
	v := New()

	enErrs := v.Check(sampleRequest{Email: "a@b.co", Limit: 1}, "en")
	xxErrs := v.Check(sampleRequest{Email: "a@b.co", Limit: 1}, "xx")
	require.Len(t, xxErrs, 1)

	assert.Equal(t, enErrs[0].Msg, xxErrs[0].Msg)
}

// TestLocale verifies Accept-Language parsing.
func TestLocale(t *testing.T) {
	assert.Equal(t, "en", Locale(""))
	assert.Equal(t, "ru", Locale("ru"))
	assert.Equal(t, "ru", Locale("ru-RU,en;q=0.9"))
	assert.Equal(t, "en", Locale("en;q=0.8, ru;q=0.5"))
	assert.Equal(t, "de", Locale("DE"))
	assert.Equal(t, "en", Locale(" , "))
}

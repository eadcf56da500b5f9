package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItems_Valid(t *testing.T) {
	payload := `[
		{"title": "Go 1.26", "url": "https://example.com/go"},
		{"title": "Full record", "url": "https://example.com/full",
		 "snippet": "s", "author": "a", "published_at": "2026-08-03",
		 "relevance": 0.7, "engagement": {"upvotes": 12}}
	]`

	assert.NoError(t, ValidateItems(payload))
}

func TestValidateItems_EmptyArray(t *testing.T) {
	assert.NoError(t, ValidateItems(`[]`))
}

func TestValidateItems_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not an array", `{"title": "x"}`},
		{"missing url", `[{"title": "x"}]`},
		{"empty title", `[{"title": "", "url": "https://example.com"}]`},
		{"relevance above one", `[{"title": "x", "url": "https://example.com", "relevance": 1.5}]`},
		{"string counter", `[{"title": "x", "url": "https://example.com", "engagement": {"likes": "lots"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.payload)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateItems_UnparseableDocument(t *testing.T) {
	err := ValidateItems(`[{"title": `)

	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "0.url", Message: "url is required"},
		{Field: "1.relevance", Message: "must be <= 1"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "0.url")
	assert.Contains(t, msg, "1.relevance")
}

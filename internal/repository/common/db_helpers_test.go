package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "($1, $2, $3)", Placeholders(1, 3))
	assert.Equal(t, "($1, $2), ($3, $4), ($5, $6)", Placeholders(3, 2))
	assert.Equal(t, "", Placeholders(0, 2))
}

func TestAdvisoryKey_StablePerOrganization(t *testing.T) {
	org := uuid.MustParse("0b8f4a52-5c61-4a0a-9d4f-8e8d9b7f6a11")
	assert.Equal(t, AdvisoryKey(org), AdvisoryKey(org))
	assert.NotEqual(t, AdvisoryKey(org), AdvisoryKey(uuid.New()))
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

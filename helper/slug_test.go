package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUniqueEventSlug(t *testing.T) {
	db := setupTestDB(t)

	first := GenerateUniqueEventSlug(db, "Noche de Gala 2026")
	assert.Equal(t, "noche-de-gala-2026", first)

	event := createEvent(t, db)
	taken := GenerateUniqueEventSlug(db, event.Name)
	assert.Equal(t, "noche-somnus-1", taken)
}

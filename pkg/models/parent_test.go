package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestUniqueIDs_CollapsesDuplicatesKeepingFirstOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	got := models.UniqueIDs([]uuid.UUID{a, b, a, c, b})
	assert.Equal(t, []uuid.UUID{a, b, c}, got)
}

func TestUniqueIDs_PassesThroughShortSlices(t *testing.T) {
	assert.Nil(t, models.UniqueIDs(nil))

	one := []uuid.UUID{uuid.New()}
	assert.Equal(t, one, models.UniqueIDs(one))
}

package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	a := NewBaseEntity()
	b := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Equal(t, time.UTC, a.CreatedAt.Location())
	assert.WithinDuration(t, time.Now(), a.CreatedAt, 5*time.Second)
}

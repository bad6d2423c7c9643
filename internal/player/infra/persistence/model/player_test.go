package model

import (
	"testing"
	"time"

	"PlayerHub/internal/player/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerToDoc_nil切片写成空数组(t *testing.T) {
	doc := PlayerToDoc(&entity.Player{ID: "p1", Name: "Ann"})

	assert.NotNil(t, doc.Tags)
	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
}

func TestPlayerToDoc_时间截断到毫秒(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.FixedZone("CST", 8*3600))
	doc := PlayerToDoc(&entity.Player{
		ID:        "p1",
		CreatedAt: at,
		Items:     []entity.Item{{ID: "i1", Level: 1, CreatedAt: at}},
	})

	want := at.UTC().Truncate(time.Millisecond)
	assert.Equal(t, want, doc.CreatedAt)
	assert.Equal(t, want, doc.Items[0].CreatedAt)
}

func TestPlayerDocToEntity_不共享切片(t *testing.T) {
	doc := PlayerDoc{
		ID:    "p1",
		Name:  "Ann",
		Score: 5,
		Tags:  []string{"vip"},
		Items: []ItemDoc{{ID: "i1", Level: 2, Type: "sword"}},
	}
	p := PlayerDocToEntity(doc)
	require.Len(t, p.Items, 1)

	p.Tags[0] = "mutated"
	assert.Equal(t, "vip", doc.Tags[0])
	assert.Equal(t, entity.Item{ID: "i1", Level: 2, Type: "sword"}, p.Items[0])
}

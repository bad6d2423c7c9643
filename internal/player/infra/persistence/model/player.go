package model

import (
	"time"

	"PlayerHub/internal/player/entity"
)

// 文档字段名，查询/更新语句共用，避免手写字符串散落各处。
const (
	FieldID        = "_id"
	FieldName      = "name"
	FieldScore     = "score"
	FieldTags      = "tags"
	FieldItems     = "items"
	FieldVersion   = "version"
	FieldCreatedAt = "created_at"
	FieldItemID    = "items.id"
	FieldItemLevel = "items.$.level"
)

// PlayerDoc 是 players 集合中的文档形状，items 内嵌。
type PlayerDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Score     int       `bson:"score"`
	Tags      []string  `bson:"tags"`
	Items     []ItemDoc `bson:"items"`
	CreatedAt time.Time `bson:"created_at"`
	Version   int64     `bson:"version"`
}

type ItemDoc struct {
	ID        string    `bson:"id"`
	Level     int       `bson:"level"`
	Type      string    `bson:"type,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func PlayerToDoc(p *entity.Player) PlayerDoc {
	n := p.Clone()
	n.Normalize()
	items := make([]ItemDoc, 0, len(n.Items))
	for _, it := range n.Items {
		items = append(items, ItemToDoc(it))
	}
	return PlayerDoc{
		ID:        string(n.ID),
		Name:      n.Name,
		Score:     n.Score,
		Tags:      n.Tags,
		Items:     items,
		CreatedAt: n.CreatedAt,
		Version:   n.Version,
	}
}

func PlayerDocToEntity(d PlayerDoc) *entity.Player {
	items := make([]entity.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, ItemDocToEntity(it))
	}
	p := &entity.Player{
		ID:        entity.PlayerID(d.ID),
		Name:      d.Name,
		Score:     d.Score,
		Tags:      append([]string{}, d.Tags...),
		Items:     items,
		CreatedAt: d.CreatedAt,
		Version:   d.Version,
	}
	p.Normalize()
	return p
}

func PlayerDocsToEntities(docs []PlayerDoc) []*entity.Player {
	out := make([]*entity.Player, 0, len(docs))
	for _, d := range docs {
		out = append(out, PlayerDocToEntity(d))
	}
	return out
}

func ItemToDoc(it entity.Item) ItemDoc {
	it.Normalize()
	return ItemDoc{
		ID:        string(it.ID),
		Level:     it.Level,
		Type:      it.Type,
		CreatedAt: it.CreatedAt,
	}
}

func ItemDocToEntity(d ItemDoc) entity.Item {
	it := entity.Item{
		ID:        entity.ItemID(d.ID),
		Level:     d.Level,
		Type:      d.Type,
		CreatedAt: d.CreatedAt,
	}
	it.Normalize()
	return it
}

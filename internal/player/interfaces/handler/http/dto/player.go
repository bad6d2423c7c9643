package dto

import (
	"time"

	"PlayerHub/internal/player/entity"
)

type CreatePlayerReq struct {
	Name  string   `json:"name" binding:"required"`
	Score int      `json:"score"`
	Tags  []string `json:"tags"`
}

type SavePlayerReq struct {
	Name    string   `json:"name" binding:"required"`
	Score   int      `json:"score"`
	Tags    []string `json:"tags"`
	Version *int64   `json:"version" binding:"required"`
}

type ModifyPlayerReq struct {
	Score *int `json:"score" binding:"required"`
}

type ChangeNameReq struct {
	Name string `json:"name" binding:"required"`
}

type IncrementScoreReq struct {
	Delta *int `json:"delta" binding:"required"`
}

type AddTagReq struct {
	Tag string `json:"tag" binding:"required"`
}

type NewItemReq struct {
	Level *int   `json:"level" binding:"required"`
	Type  string `json:"type"`
}

type UpdateItemReq struct {
	Level *int `json:"level" binding:"required"`
}

// 时间统一输出毫秒时间戳。

type Player struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Tags      []string `json:"tags"`
	Items     []Item   `json:"items"`
	CreatedAt int64    `json:"created_at"`
	Version   int64    `json:"version"`
}

type Item struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	Type      string `json:"type,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type UpdateResult struct {
	MatchedCount  int64 `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
}

type PushItemResp struct {
	UpdateResult
	Item *Item `json:"item,omitempty"`
}

func FromPlayer(p *entity.Player) *Player {
	if p == nil {
		return nil
	}
	items := make([]Item, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, *FromItem(&p.Items[i]))
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Player{
		ID:        string(p.ID),
		Name:      p.Name,
		Score:     p.Score,
		Tags:      tags,
		Items:     items,
		CreatedAt: millis(p.CreatedAt),
		Version:   p.Version,
	}
}

func FromPlayers(ps []*entity.Player) []*Player {
	out := make([]*Player, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromPlayer(p))
	}
	return out
}

func FromItem(it *entity.Item) *Item {
	if it == nil {
		return nil
	}
	return &Item{
		ID:        string(it.ID),
		Level:     it.Level,
		Type:      it.Type,
		CreatedAt: millis(it.CreatedAt),
	}
}

func FromItems(items []*entity.Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		out = append(out, FromItem(it))
	}
	return out
}

func FromUpdateResult(r entity.UpdateResult) UpdateResult {
	return UpdateResult{MatchedCount: r.MatchedCount, ModifiedCount: r.ModifiedCount}
}

// 零值时间输出 0，而不是公元 1 年的毫秒数。
func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

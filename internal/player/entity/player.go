package entity

import "time"

// PlayerID 是玩家主键（UUID 字符串），创建后不可变。
type PlayerID string

// ItemID 只在所属玩家内唯一。
type ItemID string

func (id PlayerID) String() string { return string(id) }

func (id ItemID) String() string { return string(id) }

// Player 聚合根：items 只能通过 Player 访问。
type Player struct {
	ID        PlayerID
	Name      string
	Score     int
	Tags      []string
	Items     []Item
	CreatedAt time.Time
	// Version 乐观并发令牌：每次成功写入 +1，Save 时比对。
	Version int64
}

// Item 嵌在 Player 内部，没有独立生命周期。
type Item struct {
	ID        ItemID
	Level     int
	Type      string
	CreatedAt time.Time
}

// ModifiedPlayer 是 Modify 允许覆盖的字段集合。
type ModifiedPlayer struct {
	Score int
}

// UpdateResult 是定向更新的回执。
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// Normalize 保证 tags/items 不为 nil（数组追加类更新不能落在 null 字段上），
// 时间统一为 UTC 毫秒精度，与文档存储的精度一致。
func (p *Player) Normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Items == nil {
		p.Items = []Item{}
	}
	p.CreatedAt = storeTime(p.CreatedAt)
	for i := range p.Items {
		p.Items[i].Normalize()
	}
}

func (it *Item) Normalize() {
	it.CreatedAt = storeTime(it.CreatedAt)
}

func storeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond)
}

// Clone 深拷贝，切片不与原对象共享底层数组。
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Tags = append(make([]string, 0, len(p.Tags)), p.Tags...)
	out.Items = append(make([]Item, 0, len(p.Items)), p.Items...)
	return &out
}

// FindItem 线性查找，返回下标；找不到返回 -1。
func (p *Player) FindItem(id ItemID) int {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// HasTag 精确匹配。
func (p *Player) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

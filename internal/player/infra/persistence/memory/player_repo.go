package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"PlayerHub/internal/player/app/port"
	"PlayerHub/internal/player/entity"
)

// PlayerRepo 是进程内的玩家仓储，本地调试和测试时替代 MongoDB。
// 每个操作在锁内一次完成，读写都做深拷贝，调用方拿到的对象与存储互不影响。
// 与 MongoDB 一样，ctx 已取消或超时时操作直接返回 ctx 的错误。
type PlayerRepo struct {
	mu      sync.RWMutex
	players map[entity.PlayerID]*entity.Player
	// order 记录插入顺序，充当“存储原生顺序”。
	order []entity.PlayerID
}

var _ port.PlayerRepository = (*PlayerRepo)(nil)

func NewPlayerRepo() *PlayerRepo {
	return &PlayerRepo{players: make(map[entity.PlayerID]*entity.Player)}
}

func (r *PlayerRepo) Create(ctx context.Context, p *entity.Player) (*entity.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, entity.ErrInvalidArgument.WithData("reason", "player is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[p.ID]; ok {
		return nil, entity.ErrPlayerExists.WithData("player_id", string(p.ID))
	}
	stored := p.Clone()
	stored.Normalize()
	stored.Version = 0
	r.players[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return stored.Clone(), nil
}

func (r *PlayerRepo) Get(ctx context.Context, id entity.PlayerID) (*entity.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return nil, notFound(id)
	}
	return p.Clone(), nil
}

func (r *PlayerRepo) GetAll(ctx context.Context) ([]*entity.Player, error) {
	return r.filter(ctx, func(*entity.Player) bool { return true })
}

func (r *PlayerRepo) Delete(ctx context.Context, id entity.PlayerID) (*entity.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return nil, notFound(id)
	}
	delete(r.players, id)
	r.order = slices.DeleteFunc(r.order, func(x entity.PlayerID) bool { return x == id })
	return p, nil
}

func (r *PlayerRepo) Modify(ctx context.Context, id entity.PlayerID, m entity.ModifiedPlayer) (*entity.Player, error) {
	return r.mutate(ctx, id, func(p *entity.Player) error {
		p.Score = m.Score
		return nil
	})
}

func (r *PlayerRepo) Save(ctx context.Context, p *entity.Player) (*entity.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, entity.ErrInvalidArgument.WithData("reason", "player is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.players[p.ID]
	if !ok {
		return nil, notFound(p.ID)
	}
	if cur.Version != p.Version {
		return nil, entity.ErrVersionConflict.WithDataMap(map[string]any{"player_id": string(p.ID), "version": p.Version})
	}
	next := p.Clone()
	next.Normalize()
	next.Version = cur.Version + 1
	r.players[p.ID] = next
	return next.Clone(), nil
}

func (r *PlayerRepo) CreateItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error) {
	item.Normalize()
	_, err := r.mutate(ctx, id, func(p *entity.Player) error {
		if p.FindItem(item.ID) >= 0 {
			return entity.ErrItemExists.WithDataMap(itemMeta(id, item.ID))
		}
		p.Items = append(p.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PlayerRepo) GetItem(ctx context.Context, id entity.PlayerID, itemID entity.ItemID) (*entity.Item, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := p.FindItem(itemID)
	if idx < 0 {
		return nil, entity.ErrItemNotFound.WithDataMap(itemMeta(id, itemID))
	}
	it := p.Items[idx]
	return &it, nil
}

func (r *PlayerRepo) GetAllItems(ctx context.Context, id entity.PlayerID) ([]*entity.Item, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Item, 0, len(p.Items))
	for i := range p.Items {
		out = append(out, &p.Items[i])
	}
	return out, nil
}

func (r *PlayerRepo) UpdateItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error) {
	var out entity.Item
	_, err := r.mutate(ctx, id, func(p *entity.Player) error {
		idx := p.FindItem(item.ID)
		if idx < 0 {
			return entity.ErrItemNotFound.WithDataMap(itemMeta(id, item.ID))
		}
		p.Items[idx].Level = item.Level
		out = p.Items[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PlayerRepo) DeleteItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error) {
	var out entity.Item
	_, err := r.mutate(ctx, id, func(p *entity.Player) error {
		idx := p.FindItem(item.ID)
		if idx < 0 {
			return entity.ErrItemNotFound.WithDataMap(itemMeta(id, item.ID))
		}
		out = p.Items[idx]
		p.Items = slices.Delete(p.Items, idx, idx+1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PlayerRepo) GetPlayersWithXscore(ctx context.Context, x int) ([]*entity.Player, error) {
	return r.filter(ctx, func(p *entity.Player) bool { return p.Score >= x })
}

func (r *PlayerRepo) GetPlayerWithName(ctx context.Context, name string) (*entity.Player, error) {
	found, err := r.filter(ctx, func(p *entity.Player) bool { return p.Name == name })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, entity.ErrPlayerNotFound.WithData("name", name)
	}
	return found[0], nil
}

func (r *PlayerRepo) GetPlayersWithNumItems(ctx context.Context, count int) ([]*entity.Player, error) {
	return r.filter(ctx, func(p *entity.Player) bool { return len(p.Items) == count })
}

func (r *PlayerRepo) GetBestPlayers(ctx context.Context) ([]*entity.Player, error) {
	all, err := r.filter(ctx, func(*entity.Player) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b *entity.Player) int { return cmp.Compare(b.Score, a.Score) })
	if len(all) > port.BestPlayersLimit {
		all = all[:port.BestPlayersLimit]
	}
	return all, nil
}

func (r *PlayerRepo) GetPlayersWithTag(ctx context.Context, tag string) ([]*entity.Player, error) {
	return r.filter(ctx, func(p *entity.Player) bool { return p.HasTag(tag) })
}

func (r *PlayerRepo) ChangePlayerName(ctx context.Context, id entity.PlayerID, name string) (entity.UpdateResult, error) {
	return r.update(ctx, id, func(p *entity.Player) bool {
		p.Name = name
		return true
	})
}

func (r *PlayerRepo) IncrementScore(ctx context.Context, id entity.PlayerID, delta int) (entity.UpdateResult, error) {
	return r.update(ctx, id, func(p *entity.Player) bool {
		p.Score += delta
		return true
	})
}

func (r *PlayerRepo) PushItem(ctx context.Context, id entity.PlayerID, item entity.Item) (entity.UpdateResult, error) {
	item.Normalize()
	return r.update(ctx, id, func(p *entity.Player) bool {
		if p.FindItem(item.ID) >= 0 {
			return false
		}
		p.Items = append(p.Items, item)
		return true
	})
}

func (r *PlayerRepo) AddTagToPlayer(ctx context.Context, id entity.PlayerID, tag string) (entity.UpdateResult, error) {
	return r.update(ctx, id, func(p *entity.Player) bool {
		p.Tags = append(p.Tags, tag)
		return true
	})
}

// mutate 在锁内对副本执行 fn，成功才递增 version 并替换存储，返回替换后的快照；fn 出错时存储不变。
func (r *PlayerRepo) mutate(ctx context.Context, id entity.PlayerID, fn func(p *entity.Player) error) (*entity.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.players[id]
	if !ok {
		return nil, notFound(id)
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version++
	r.players[id] = next
	return next.Clone(), nil
}

// update 模拟定向更新的回执：fn 返回 false 表示过滤条件未命中。
func (r *PlayerRepo) update(ctx context.Context, id entity.PlayerID, fn func(p *entity.Player) bool) (entity.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return entity.UpdateResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.players[id]
	if !ok {
		return entity.UpdateResult{}, nil
	}
	next := cur.Clone()
	if !fn(next) {
		return entity.UpdateResult{}, nil
	}
	next.Version++
	r.players[id] = next
	return entity.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *PlayerRepo) filter(ctx context.Context, keep func(p *entity.Player) bool) ([]*entity.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Player, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func notFound(id entity.PlayerID) error {
	return entity.ErrPlayerNotFound.WithData("player_id", string(id))
}

func itemMeta(id entity.PlayerID, itemID entity.ItemID) map[string]any {
	return map[string]any{"player_id": string(id), "item_id": string(itemID)}
}

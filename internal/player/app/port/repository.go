package port

import (
	"context"

	"PlayerHub/internal/player/entity"
)

// PlayerRepository 是 Player 聚合的唯一读写入口。
//
// 错误约定：
// - 玩家不存在：entity.ErrPlayerNotFound
// - 玩家存在但道具不存在：entity.ErrItemNotFound
// - 存储失败：原样向上传递（保留 cause 链），仓储不重试
type PlayerRepository interface {
	Create(ctx context.Context, p *entity.Player) (*entity.Player, error)
	Get(ctx context.Context, id entity.PlayerID) (*entity.Player, error)
	GetAll(ctx context.Context) ([]*entity.Player, error)
	Delete(ctx context.Context, id entity.PlayerID) (*entity.Player, error)
	Modify(ctx context.Context, id entity.PlayerID, m entity.ModifiedPlayer) (*entity.Player, error)
	// Save 整文档替换，仅当存储中的 version 与 p.Version 一致时生效。
	Save(ctx context.Context, p *entity.Player) (*entity.Player, error)

	CreateItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error)
	GetItem(ctx context.Context, id entity.PlayerID, itemID entity.ItemID) (*entity.Item, error)
	GetAllItems(ctx context.Context, id entity.PlayerID) ([]*entity.Item, error)
	UpdateItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error)
	DeleteItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error)

	GetPlayersWithXscore(ctx context.Context, x int) ([]*entity.Player, error)
	GetPlayerWithName(ctx context.Context, name string) (*entity.Player, error)
	GetPlayersWithNumItems(ctx context.Context, count int) ([]*entity.Player, error)
	GetBestPlayers(ctx context.Context) ([]*entity.Player, error)
	GetPlayersWithTag(ctx context.Context, tag string) ([]*entity.Player, error)

	ChangePlayerName(ctx context.Context, id entity.PlayerID, name string) (entity.UpdateResult, error)
	IncrementScore(ctx context.Context, id entity.PlayerID, delta int) (entity.UpdateResult, error)
	PushItem(ctx context.Context, id entity.PlayerID, item entity.Item) (entity.UpdateResult, error)
	AddTagToPlayer(ctx context.Context, id entity.PlayerID, tag string) (entity.UpdateResult, error)
}

// BestPlayersLimit 排行榜返回的最大人数。
const BestPlayersLimit = 10

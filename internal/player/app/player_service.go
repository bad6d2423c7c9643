package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"PlayerHub/internal/player/app/port"
	"PlayerHub/internal/player/entity"

	"github.com/google/uuid"
)

const maxNameLen = 64

// CreatePlayerCmd 新建玩家的输入；id 由服务生成。
type CreatePlayerCmd struct {
	Name  string
	Score int
	Tags  []string
}

// NewItemCmd 新建道具的输入；id 由服务生成。
type NewItemCmd struct {
	Level int
	Type  string
}

// SavePlayerCmd 整体覆盖玩家（items 保持存储中的值），Version 为读取时拿到的版本。
type SavePlayerCmd struct {
	Name    string
	Score   int
	Tags    []string
	Version int64
}

type Option func(*PlayerService)

// WithIDGenerator 替换 id 生成器，测试里用固定序列。
func WithIDGenerator(fn func() string) Option {
	return func(s *PlayerService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithClock(fn func() time.Time) Option {
	return func(s *PlayerService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// PlayerService 负责 id 生成、参数校验和错误归类，读写全部委托给 PlayerRepository。
// 返回的错误要么是 entity 的业务错误，要么是 ErrUnavailable / ErrTimeout。
type PlayerService struct {
	repo  port.PlayerRepository
	newID func() string
	now   func() time.Time
}

func NewPlayerService(repo port.PlayerRepository, opts ...Option) *PlayerService {
	s := &PlayerService{
		repo:  repo,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PlayerService) CreatePlayer(ctx context.Context, cmd CreatePlayerCmd) (*entity.Player, error) {
	name, err := checkName(cmd.Name)
	if err != nil {
		return nil, err
	}
	tags, err := checkTags(cmd.Tags)
	if err != nil {
		return nil, err
	}
	p := &entity.Player{
		ID:        entity.PlayerID(s.newID()),
		Name:      name,
		Score:     cmd.Score,
		Tags:      tags,
		Items:     []entity.Item{},
		CreatedAt: s.now(),
	}
	created, err := s.repo.Create(ctx, p)
	return created, classify(err)
}

func (s *PlayerService) GetPlayer(ctx context.Context, id string) (*entity.Player, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, pid)
	return p, classify(err)
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]*entity.Player, error) {
	ps, err := s.repo.GetAll(ctx)
	return ps, classify(err)
}

func (s *PlayerService) DeletePlayer(ctx context.Context, id string) (*entity.Player, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Delete(ctx, pid)
	return p, classify(err)
}

func (s *PlayerService) ModifyPlayer(ctx context.Context, id string, m entity.ModifiedPlayer) (*entity.Player, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Modify(ctx, pid, m)
	return p, classify(err)
}

// SavePlayer 读-改-写：先读当前文档拿到 items，再按调用方给的 version 做乐观替换。
// 调用方的 version 过期时返回 entity.ErrVersionConflict。
func (s *PlayerService) SavePlayer(ctx context.Context, id string, cmd SavePlayerCmd) (*entity.Player, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return nil, err
	}
	name, err := checkName(cmd.Name)
	if err != nil {
		return nil, err
	}
	tags, err := checkTags(cmd.Tags)
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.Get(ctx, pid)
	if err != nil {
		return nil, classify(err)
	}
	next := cur.Clone()
	next.Name = name
	next.Score = cmd.Score
	next.Tags = tags
	next.Version = cmd.Version
	saved, err := s.repo.Save(ctx, next)
	return saved, classify(err)
}

func (s *PlayerService) CreateItem(ctx context.Context, id string, cmd NewItemCmd) (*entity.Item, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.newItem(cmd)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateItem(ctx, pid, item)
	return created, classify(err)
}

func (s *PlayerService) GetItem(ctx context.Context, id, itemID string) (*entity.Item, error) {
	pid, iid, err := parseIDs(id, itemID)
	if err != nil {
		return nil, err
	}
	it, err := s.repo.GetItem(ctx, pid, iid)
	return it, classify(err)
}

func (s *PlayerService) ListItems(ctx context.Context, id string) ([]*entity.Item, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetAllItems(ctx, pid)
	return items, classify(err)
}

func (s *PlayerService) UpdateItemLevel(ctx context.Context, id, itemID string, level int) (*entity.Item, error) {
	pid, iid, err := parseIDs(id, itemID)
	if err != nil {
		return nil, err
	}
	if level < 0 {
		return nil, InvalidArgument(ReasonNegativeLevel)
	}
	it, err := s.repo.UpdateItem(ctx, pid, entity.Item{ID: iid, Level: level})
	return it, classify(err)
}

func (s *PlayerService) DeleteItem(ctx context.Context, id, itemID string) (*entity.Item, error) {
	pid, iid, err := parseIDs(id, itemID)
	if err != nil {
		return nil, err
	}
	it, err := s.repo.DeleteItem(ctx, pid, entity.Item{ID: iid})
	return it, classify(err)
}

func (s *PlayerService) PlayersWithMinScore(ctx context.Context, x int) ([]*entity.Player, error) {
	ps, err := s.repo.GetPlayersWithXscore(ctx, x)
	return ps, classify(err)
}

func (s *PlayerService) PlayerWithName(ctx context.Context, name string) (*entity.Player, error) {
	if name == "" {
		return nil, InvalidArgument(ReasonEmptyName)
	}
	p, err := s.repo.GetPlayerWithName(ctx, name)
	return p, classify(err)
}

func (s *PlayerService) PlayersWithNumItems(ctx context.Context, count int) ([]*entity.Player, error) {
	ps, err := s.repo.GetPlayersWithNumItems(ctx, count)
	return ps, classify(err)
}

func (s *PlayerService) BestPlayers(ctx context.Context) ([]*entity.Player, error) {
	ps, err := s.repo.GetBestPlayers(ctx)
	return ps, classify(err)
}

func (s *PlayerService) PlayersWithTag(ctx context.Context, tag string) ([]*entity.Player, error) {
	if tag == "" {
		return nil, InvalidArgument(ReasonEmptyTag)
	}
	ps, err := s.repo.GetPlayersWithTag(ctx, tag)
	return ps, classify(err)
}

// 以下定向更新返回存储回执：MatchedCount 为 0 表示玩家不存在（或 PushItem 的道具 id 已存在）。

func (s *PlayerService) ChangeName(ctx context.Context, id, name string) (entity.UpdateResult, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return entity.UpdateResult{}, err
	}
	if name, err = checkName(name); err != nil {
		return entity.UpdateResult{}, err
	}
	res, err := s.repo.ChangePlayerName(ctx, pid, name)
	return res, classify(err)
}

func (s *PlayerService) IncrementScore(ctx context.Context, id string, delta int) (entity.UpdateResult, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return entity.UpdateResult{}, err
	}
	res, err := s.repo.IncrementScore(ctx, pid, delta)
	return res, classify(err)
}

// PushItem 返回回执和生成的道具（未命中时道具没有写入）。
func (s *PlayerService) PushItem(ctx context.Context, id string, cmd NewItemCmd) (entity.UpdateResult, *entity.Item, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return entity.UpdateResult{}, nil, err
	}
	item, err := s.newItem(cmd)
	if err != nil {
		return entity.UpdateResult{}, nil, err
	}
	res, err := s.repo.PushItem(ctx, pid, item)
	if err != nil {
		return entity.UpdateResult{}, nil, classify(err)
	}
	item.Normalize()
	return res, &item, nil
}

func (s *PlayerService) AddTag(ctx context.Context, id, tag string) (entity.UpdateResult, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return entity.UpdateResult{}, err
	}
	if tag = strings.TrimSpace(tag); tag == "" {
		return entity.UpdateResult{}, InvalidArgument(ReasonEmptyTag)
	}
	res, err := s.repo.AddTagToPlayer(ctx, pid, tag)
	return res, classify(err)
}

func (s *PlayerService) newItem(cmd NewItemCmd) (entity.Item, error) {
	if cmd.Level < 0 {
		return entity.Item{}, InvalidArgument(ReasonNegativeLevel)
	}
	return entity.Item{
		ID:        entity.ItemID(s.newID()),
		Level:     cmd.Level,
		Type:      cmd.Type,
		CreatedAt: s.now(),
	}, nil
}

// 只接受 36 位标准格式，uuid.Parse 还会接受带花括号/urn 前缀的写法。
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func parsePlayerID(id string) (entity.PlayerID, error) {
	if !isCanonicalUUID(id) {
		return "", InvalidArgument(ReasonInvalidPlayerID)
	}
	return entity.PlayerID(id), nil
}

func parseIDs(id, itemID string) (entity.PlayerID, entity.ItemID, error) {
	pid, err := parsePlayerID(id)
	if err != nil {
		return "", "", err
	}
	if !isCanonicalUUID(itemID) {
		return "", "", InvalidArgument(ReasonInvalidItemID)
	}
	return pid, entity.ItemID(itemID), nil
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", InvalidArgument(ReasonEmptyName)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", InvalidArgument(ReasonNameTooLong)
	}
	return name, nil
}

func checkTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t == "" {
			return nil, InvalidArgument(ReasonEmptyTag)
		}
		out = append(out, t)
	}
	return out, nil
}

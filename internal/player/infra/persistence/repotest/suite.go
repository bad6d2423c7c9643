// Package repotest 是 port.PlayerRepository 的一致性测试集，
// 内存实现和 MongoDB 实现跑同一套用例，保证两者语义一致。
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"PlayerHub/internal/player/app/port"
	"PlayerHub/internal/player/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// Suite 每个用例前通过 NewRepo 拿一个空仓储。
type Suite struct {
	suite.Suite
	NewRepo func(t *testing.T) port.PlayerRepository

	repo port.PlayerRepository
	ctx  context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewRepo, "NewRepo must be set")
	s.repo = s.NewRepo(s.T())
	s.ctx = context.Background()
}

func NewPlayer(name string, score int) *entity.Player {
	return &entity.Player{
		ID:        entity.PlayerID(uuid.NewString()),
		Name:      name,
		Score:     score,
		Tags:      []string{},
		Items:     []entity.Item{},
		CreatedAt: time.Now(),
	}
}

func NewItem(level int) entity.Item {
	return entity.Item{
		ID:        entity.ItemID(uuid.NewString()),
		Level:     level,
		Type:      "sword",
		CreatedAt: time.Now(),
	}
}

func (s *Suite) create(name string, score int) *entity.Player {
	p, err := s.repo.Create(s.ctx, NewPlayer(name, score))
	s.Require().NoError(err)
	return p
}

func ids(players []*entity.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, string(p.ID))
	}
	sort.Strings(out)
	return out
}

// Player 基本读写

func (s *Suite) TestCreateThenGet() {
	in := NewPlayer("Ann", 3)
	in.Tags = []string{"vip"}
	in.Items = []entity.Item{NewItem(1)}

	created, err := s.repo.Create(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(in.ID, created.ID)
	s.Equal(int64(0), created.Version)

	got, err := s.repo.Get(s.ctx, in.ID)
	s.Require().NoError(err)
	s.Equal(created, got)
}

func (s *Suite) TestCreate_nil切片存为空数组() {
	p := &entity.Player{ID: entity.PlayerID(uuid.NewString()), Name: "Bob"}
	_, err := s.repo.Create(s.ctx, p)
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.NotNil(got.Tags)
	s.NotNil(got.Items)

	res, err := s.repo.AddTagToPlayer(s.ctx, p.ID, "new")
	s.Require().NoError(err)
	s.Equal(int64(1), res.MatchedCount)
}

func (s *Suite) TestCreate_重复ID() {
	p := s.create("Ann", 0)
	_, err := s.repo.Create(s.ctx, p)
	s.ErrorIs(err, entity.ErrPlayerExists)
}

func (s *Suite) TestGet_不存在() {
	_, err := s.repo.Get(s.ctx, entity.PlayerID(uuid.NewString()))
	s.ErrorIs(err, entity.ErrPlayerNotFound)
}

func (s *Suite) TestDeleteThenGet() {
	p := s.create("Ann", 7)

	deleted, err := s.repo.Delete(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p, deleted)

	_, err = s.repo.Get(s.ctx, p.ID)
	s.ErrorIs(err, entity.ErrPlayerNotFound)

	_, err = s.repo.Delete(s.ctx, p.ID)
	s.ErrorIs(err, entity.ErrPlayerNotFound)
}

func (s *Suite) TestGetAll() {
	all, err := s.repo.GetAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)

	a := s.create("a", 1)
	b := s.create("b", 2)
	c := s.create("c", 3)
	_, err = s.repo.Delete(s.ctx, b.ID)
	s.Require().NoError(err)

	want := ids([]*entity.Player{a, c})
	for i := 0; i < 2; i++ {
		all, err = s.repo.GetAll(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, ids(all))
	}
}

func (s *Suite) TestModify() {
	p := s.create("Ann", 1)

	got, err := s.repo.Modify(s.ctx, p.ID, entity.ModifiedPlayer{Score: 42})
	s.Require().NoError(err)
	s.Equal(42, got.Score)
	s.Equal(p.Name, got.Name)
	s.Equal(p.Version+1, got.Version)

	_, err = s.repo.Modify(s.ctx, entity.PlayerID(uuid.NewString()), entity.ModifiedPlayer{Score: 1})
	s.ErrorIs(err, entity.ErrPlayerNotFound)
}

func (s *Suite) TestModify_返回值可直接Save() {
	p := s.create("Ann", 1)

	got, err := s.repo.Modify(s.ctx, p.ID, entity.ModifiedPlayer{Score: 5})
	s.Require().NoError(err)
	stored, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(stored.Version, got.Version)

	got.Name = "Anna"
	saved, err := s.repo.Save(s.ctx, got)
	s.Require().NoError(err)
	s.Equal(got.Version+1, saved.Version)
	s.Equal(5, saved.Score)
}

// Save 乐观并发

func (s *Suite) TestSave_版本一致时替换() {
	p := s.create("Ann", 1)
	p.Name = "Anna"
	p.Tags = append(p.Tags, "renamed")

	saved, err := s.repo.Save(s.ctx, p)
	s.Require().NoError(err)
	s.Equal(int64(1), saved.Version)

	got, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(saved, got)
}

func (s *Suite) TestSave_旧版本冲突且不覆盖() {
	p := s.create("Ann", 1)
	stale := p.Clone()

	_, err := s.repo.IncrementScore(s.ctx, p.ID, 10)
	s.Require().NoError(err)

	stale.Score = 999
	_, err = s.repo.Save(s.ctx, stale)
	s.ErrorIs(err, entity.ErrVersionConflict)

	got, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(11, got.Score)
}

func (s *Suite) TestSave_玩家不存在() {
	_, err := s.repo.Save(s.ctx, NewPlayer("ghost", 0))
	s.ErrorIs(err, entity.ErrPlayerNotFound)
}

// Item 读写

func (s *Suite) TestItemLifecycle() {
	p := s.create("Ann", 0)
	item := NewItem(3)

	created, err := s.repo.CreateItem(s.ctx, p.ID, item)
	s.Require().NoError(err)

	got, err := s.repo.GetItem(s.ctx, p.ID, item.ID)
	s.Require().NoError(err)
	s.Equal(created, got)

	removed, err := s.repo.DeleteItem(s.ctx, p.ID, entity.Item{ID: item.ID})
	s.Require().NoError(err)
	s.Equal(created, removed)

	_, err = s.repo.GetItem(s.ctx, p.ID, item.ID)
	s.ErrorIs(err, entity.ErrItemNotFound)
	s.NotErrorIs(err, entity.ErrPlayerNotFound)

	_, err = s.repo.DeleteItem(s.ctx, p.ID, entity.Item{ID: item.ID})
	s.ErrorIs(err, entity.ErrItemNotFound)
}

func (s *Suite) TestCreateItem_保持插入顺序() {
	p := s.create("Ann", 0)
	var want []entity.ItemID
	for i := 0; i < 3; i++ {
		it := NewItem(i)
		_, err := s.repo.CreateItem(s.ctx, p.ID, it)
		s.Require().NoError(err)
		want = append(want, it.ID)
	}

	items, err := s.repo.GetAllItems(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	for i, it := range items {
		s.Equal(want[i], it.ID)
	}
}

func (s *Suite) TestCreateItem_重复ID() {
	p := s.create("Ann", 0)
	item := NewItem(1)
	_, err := s.repo.CreateItem(s.ctx, p.ID, item)
	s.Require().NoError(err)

	_, err = s.repo.CreateItem(s.ctx, p.ID, item)
	s.ErrorIs(err, entity.ErrItemExists)

	res, err := s.repo.PushItem(s.ctx, p.ID, item)
	s.Require().NoError(err)
	s.Equal(int64(0), res.MatchedCount)

	items, err := s.repo.GetAllItems(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *Suite) TestUpdateItem() {
	p := s.create("Ann", 0)
	a, b := NewItem(1), NewItem(1)
	for _, it := range []entity.Item{a, b} {
		_, err := s.repo.CreateItem(s.ctx, p.ID, it)
		s.Require().NoError(err)
	}

	updated, err := s.repo.UpdateItem(s.ctx, p.ID, entity.Item{ID: b.ID, Level: 9, Type: "ignored"})
	s.Require().NoError(err)
	s.Equal(9, updated.Level)
	s.Equal(b.Type, updated.Type)

	items, err := s.repo.GetAllItems(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(1, items[0].Level)
	s.Equal(9, items[1].Level)
}

func (s *Suite) TestUpdateItem_道具不存在时不改动其他道具() {
	p := s.create("Ann", 0)
	kept := NewItem(4)
	_, err := s.repo.CreateItem(s.ctx, p.ID, kept)
	s.Require().NoError(err)
	before, err := s.repo.GetAllItems(s.ctx, p.ID)
	s.Require().NoError(err)

	_, err = s.repo.UpdateItem(s.ctx, p.ID, NewItem(99))
	s.ErrorIs(err, entity.ErrItemNotFound)

	after, err := s.repo.GetAllItems(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *Suite) TestItemOps_玩家不存在() {
	missing := entity.PlayerID(uuid.NewString())
	item := NewItem(1)

	_, err := s.repo.CreateItem(s.ctx, missing, item)
	s.ErrorIs(err, entity.ErrPlayerNotFound)
	_, err = s.repo.GetItem(s.ctx, missing, item.ID)
	s.ErrorIs(err, entity.ErrPlayerNotFound)
	_, err = s.repo.GetAllItems(s.ctx, missing)
	s.ErrorIs(err, entity.ErrPlayerNotFound)
	_, err = s.repo.UpdateItem(s.ctx, missing, item)
	s.ErrorIs(err, entity.ErrPlayerNotFound)
	_, err = s.repo.DeleteItem(s.ctx, missing, item)
	s.ErrorIs(err, entity.ErrPlayerNotFound)

	res, err := s.repo.PushItem(s.ctx, missing, item)
	s.Require().NoError(err)
	s.Equal(entity.UpdateResult{}, res)
}

// 查询

func (s *Suite) TestGetPlayersWithXscore() {
	scores := []int{-5, 0, 3, 3, 10}
	byScore := map[int][]string{}
	for i, sc := range scores {
		p := s.create(fmt.Sprintf("p%d", i), sc)
		byScore[sc] = append(byScore[sc], string(p.ID))
	}

	for _, x := range []int{-100, -5, 0, 3, 4, 10, 11, 1 << 30} {
		var want []string
		for sc, pids := range byScore {
			if sc >= x {
				want = append(want, pids...)
			}
		}
		sort.Strings(want)
		if want == nil {
			want = []string{}
		}

		got, err := s.repo.GetPlayersWithXscore(s.ctx, x)
		s.Require().NoError(err)
		s.Equal(want, ids(got), "x=%d", x)
	}
}

func (s *Suite) TestGetPlayerWithName() {
	first := s.create("Ann", 1)
	s.create("Bob", 2)

	got, err := s.repo.GetPlayerWithName(s.ctx, "Ann")
	s.Require().NoError(err)
	s.Equal(first.ID, got.ID)

	_, err = s.repo.GetPlayerWithName(s.ctx, "nobody")
	s.ErrorIs(err, entity.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayersWithNumItems_精确匹配() {
	zero := s.create("zero", 0)
	one := s.create("one", 0)
	two := s.create("two", 0)
	_, err := s.repo.CreateItem(s.ctx, one.ID, NewItem(1))
	s.Require().NoError(err)
	for _, it := range []entity.Item{NewItem(1), NewItem(2)} {
		_, err := s.repo.CreateItem(s.ctx, two.ID, it)
		s.Require().NoError(err)
	}

	cases := map[int][]*entity.Player{
		0:  {zero},
		1:  {one},
		2:  {two},
		3:  {},
		-1: {},
	}
	for n, want := range cases {
		got, err := s.repo.GetPlayersWithNumItems(s.ctx, n)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Equal(ids(want), ids(got), "n=%d", n)
	}
}

func (s *Suite) TestGetBestPlayers_最多10个且降序() {
	for i := 0; i < 12; i++ {
		s.create(fmt.Sprintf("p%d", i), i*10)
	}

	best, err := s.repo.GetBestPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(best, port.BestPlayersLimit)
	s.Equal(110, best[0].Score)
	for i := 1; i < len(best); i++ {
		s.GreaterOrEqual(best[i-1].Score, best[i].Score)
	}
	s.Equal(20, best[len(best)-1].Score)
}

func (s *Suite) TestGetBestPlayers_不足10个() {
	best, err := s.repo.GetBestPlayers(s.ctx)
	s.Require().NoError(err)
	s.NotNil(best)
	s.Empty(best)

	s.create("a", 5)
	s.create("b", 9)
	s.create("c", 1)

	best, err = s.repo.GetBestPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(best, 3)
	s.Equal([]int{9, 5, 1}, []int{best[0].Score, best[1].Score, best[2].Score})
}

func (s *Suite) TestTags() {
	p := s.create("Ann", 0)
	s.create("Bob", 0)

	for _, tag := range []string{"vip", "vip", "pvp"} {
		res, err := s.repo.AddTagToPlayer(s.ctx, p.ID, tag)
		s.Require().NoError(err)
		s.Equal(int64(1), res.MatchedCount)
		s.Equal(int64(1), res.ModifiedCount)
	}

	got, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal([]string{"vip", "vip", "pvp"}, got.Tags)

	tagged, err := s.repo.GetPlayersWithTag(s.ctx, "vip")
	s.Require().NoError(err)
	s.Equal(ids([]*entity.Player{p}), ids(tagged))

	none, err := s.repo.GetPlayersWithTag(s.ctx, "VIP")
	s.Require().NoError(err)
	s.Empty(none)
}

// 定向更新

func (s *Suite) TestChangePlayerName() {
	p := s.create("Ann", 0)

	res, err := s.repo.ChangePlayerName(s.ctx, p.ID, "Anna")
	s.Require().NoError(err)
	s.Equal(entity.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

	got, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Anna", got.Name)

	res, err = s.repo.ChangePlayerName(s.ctx, entity.PlayerID(uuid.NewString()), "x")
	s.Require().NoError(err)
	s.Equal(entity.UpdateResult{}, res)
}

func (s *Suite) TestIncrementScore_往返不变() {
	p := s.create("Ann", 17)

	for _, k := range []int{5, -20, 0} {
		_, err := s.repo.IncrementScore(s.ctx, p.ID, k)
		s.Require().NoError(err)
		_, err = s.repo.IncrementScore(s.ctx, p.ID, -k)
		s.Require().NoError(err)

		got, err := s.repo.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(17, got.Score, "k=%d", k)
	}
}

func (s *Suite) TestIncrementScore_并发不丢更新() {
	p := s.create("Ann", 0)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.repo.IncrementScore(s.ctx, p.ID, 1)
		}()
	}
	wg.Wait()

	got, err := s.repo.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(n, got.Score)
	s.Equal(int64(n), got.Version)
}

func (s *Suite) TestCreateItem_并发不丢道具() {
	p := s.create("Ann", 0)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			_, _ = s.repo.CreateItem(s.ctx, p.ID, NewItem(level))
		}(i)
	}
	wg.Wait()

	items, err := s.repo.GetAllItems(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Len(items, n)
}

// TestScenario 创建、追加道具、加分后按名字查回。
func (s *Suite) TestScenario() {
	p1 := &entity.Player{ID: entity.PlayerID(uuid.NewString()), Name: "Ann", Score: 0, Tags: []string{}, Items: []entity.Item{}}
	_, err := s.repo.Create(s.ctx, p1)
	s.Require().NoError(err)

	i1 := entity.Item{ID: entity.ItemID(uuid.NewString()), Level: 1}
	res, err := s.repo.PushItem(s.ctx, p1.ID, i1)
	s.Require().NoError(err)
	s.Equal(int64(1), res.MatchedCount)

	items, err := s.repo.GetAllItems(s.ctx, p1.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(i1, *items[0])

	_, err = s.repo.IncrementScore(s.ctx, p1.ID, 5)
	s.Require().NoError(err)

	got, err := s.repo.GetPlayerWithName(s.ctx, "Ann")
	s.Require().NoError(err)
	s.Equal(p1.ID, got.ID)
	s.Equal(5, got.Score)
	s.Require().Len(got.Items, 1)
	s.Equal(i1, got.Items[0])
}

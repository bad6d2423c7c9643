package mongodb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"PlayerHub/internal/player/entity"
	"PlayerHub/internal/player/errs"
	"PlayerHub/internal/player/infra/persistence/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// 以下用例不依赖 MongoDB 服务，只校验生成的查询/更新文档与错误归类。

func TestItemFilters(t *testing.T) {
	tests := []struct {
		name string
		got  bson.M
		want bson.M
	}{
		{
			name: "道具不存在才命中",
			got:  itemAbsentFilter("p1", "i1"),
			want: bson.M{"_id": "p1", "items.id": bson.M{"$ne": "i1"}},
		},
		{
			name: "道具存在才命中",
			got:  itemPresentFilter("p1", "i1"),
			want: bson.M{"_id": "p1", "items.id": "i1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestItemUpdates(t *testing.T) {
	doc := model.ItemDoc{ID: "i1", Level: 3, Type: "sword", CreatedAt: time.UnixMilli(1700000000000).UTC()}

	tests := []struct {
		name string
		got  bson.M
		want bson.M
	}{
		{
			name: "追加道具",
			got:  pushItemUpdate(doc),
			want: bson.M{"$push": bson.M{"items": doc}, "$inc": bson.M{"version": 1}},
		},
		{
			name: "按位置改等级",
			got:  itemLevelUpdate(7),
			want: bson.M{"$set": bson.M{"items.$.level": 7}, "$inc": bson.M{"version": 1}},
		},
		{
			name: "按 id 移除",
			got:  pullItemUpdate("i1"),
			want: bson.M{"$pull": bson.M{"items": bson.M{"id": "i1"}}, "$inc": bson.M{"version": 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestBestPlayersSort(t *testing.T) {
	want := bson.D{
		{Key: "score", Value: -1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	}
	assert.Equal(t, want, bestPlayersSort())
}

func TestPickItem(t *testing.T) {
	before := model.PlayerDoc{
		ID: "p1",
		Items: []model.ItemDoc{
			{ID: "i1", Level: 1},
			{ID: "i2", Level: 2, Type: "shield"},
		},
	}

	it, err := pickItem(before, "p1", "i2")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemID("i2"), it.ID)
	assert.Equal(t, 2, it.Level)
	assert.Equal(t, "shield", it.Type)

	_, err = pickItem(before, "p1", "i9")
	assert.ErrorIs(t, err, entity.ErrItemNotFound)

	_, err = pickItem(model.PlayerDoc{ID: "p1"}, "p1", "i1")
	assert.ErrorIs(t, err, entity.ErrItemNotFound)
}

func TestNotFoundOr(t *testing.T) {
	r := &PlayerRepo{}
	meta := playerMeta("p1")

	err := r.notFoundOr(OpGet, mongo.ErrNoDocuments, meta)
	assert.ErrorIs(t, err, entity.ErrPlayerNotFound)

	err = r.notFoundOr(OpGet, fmt.Errorf("decode: %w", mongo.ErrNoDocuments), meta)
	assert.ErrorIs(t, err, entity.ErrPlayerNotFound)

	boom := errors.New("connection reset")
	err = r.notFoundOr(OpDelete, boom, meta)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, entity.ErrPlayerNotFound)
	assert.Equal(t, errs.KindInfra, errs.KindOf(err))
}

func TestInsertErr(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	err := insertErr("p1", dup)
	assert.ErrorIs(t, err, entity.ErrPlayerExists)

	boom := errors.New("connection reset")
	err = insertErr("p1", boom)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, entity.ErrPlayerExists)
	assert.Equal(t, errs.KindInfra, errs.KindOf(err))
}

package mongodb

import (
	"context"
	"errors"

	"PlayerHub/internal/player/app/port"
	"PlayerHub/internal/player/entity"
	"PlayerHub/internal/player/errs"
	"PlayerHub/internal/player/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultPlayerCollectionName = "players"

const (
	OpCreate        = "repo.player.Create"
	OpGet           = "repo.player.Get"
	OpFind          = "repo.player.Find"
	OpDelete        = "repo.player.Delete"
	OpModify        = "repo.player.Modify"
	OpSave          = "repo.player.Save"
	OpCreateItem    = "repo.player.CreateItem"
	OpUpdateItem    = "repo.player.UpdateItem"
	OpDeleteItem    = "repo.player.DeleteItem"
	OpUpdate        = "repo.player.Update"
	OpExists        = "repo.player.Exists"
	OpEnsureIndexes = "repo.player.EnsureIndexes"
)

var errNilCollection = errors.New("mongodb player collection is nil")

// PlayerRepo 基于 MongoDB 的玩家仓储。
//
// 道具增删改都用元素定位的原子更新（$push 带 $ne 守卫、items.$ 定位 $set、$pull），
// 每次写入同时 $inc version，Save 依赖 version 做乐观并发控制。
type PlayerRepo struct {
	coll *mongo.Collection
}

var _ port.PlayerRepository = (*PlayerRepo)(nil)

func NewPlayerRepo(db *mongo.Database, collection string) *PlayerRepo {
	if db == nil {
		return &PlayerRepo{}
	}
	if collection == "" {
		collection = defaultPlayerCollectionName
	}
	return &PlayerRepo{coll: db.Collection(collection)}
}

// EnsureIndexes 创建查询用到的二级索引，重复调用是幂等的。
func (r *PlayerRepo) EnsureIndexes(ctx context.Context) error {
	if err := r.ready(OpEnsureIndexes); err != nil {
		return err
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: model.FieldName, Value: 1}}, Options: options.Index().SetName("idx_name")},
		{Keys: bestPlayersSort(), Options: options.Index().SetName("idx_best_players")},
		{Keys: bson.D{{Key: model.FieldTags, Value: 1}}, Options: options.Index().SetName("idx_tags")},
		{Keys: bson.D{{Key: model.FieldItemID, Value: 1}}, Options: options.Index().SetName("idx_items_id")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return errs.Wrap(OpEnsureIndexes, errs.KindInfra, err, nil)
	}
	return nil
}

func (r *PlayerRepo) Create(ctx context.Context, p *entity.Player) (*entity.Player, error) {
	if err := r.ready(OpCreate); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, entity.ErrInvalidArgument.WithData("reason", "player is nil")
	}
	doc := model.PlayerToDoc(p)
	doc.Version = 0
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, insertErr(entity.PlayerID(doc.ID), err)
	}
	return model.PlayerDocToEntity(doc), nil
}

func (r *PlayerRepo) Get(ctx context.Context, id entity.PlayerID) (*entity.Player, error) {
	return r.findOne(ctx, OpGet, bson.M{model.FieldID: string(id)}, playerMeta(id))
}

func (r *PlayerRepo) GetAll(ctx context.Context) ([]*entity.Player, error) {
	return r.find(ctx, bson.M{})
}

func (r *PlayerRepo) Delete(ctx context.Context, id entity.PlayerID) (*entity.Player, error) {
	if err := r.ready(OpDelete); err != nil {
		return nil, err
	}
	var doc model.PlayerDoc
	err := r.coll.FindOneAndDelete(ctx, bson.M{model.FieldID: string(id)}).Decode(&doc)
	if err != nil {
		return nil, r.notFoundOr(OpDelete, err, playerMeta(id))
	}
	return model.PlayerDocToEntity(doc), nil
}

// Modify 单次 find-and-modify 覆盖 score 并返回写入后的文档。
func (r *PlayerRepo) Modify(ctx context.Context, id entity.PlayerID, m entity.ModifiedPlayer) (*entity.Player, error) {
	if err := r.ready(OpModify); err != nil {
		return nil, err
	}
	update := bson.M{
		"$set": bson.M{model.FieldScore: m.Score},
		"$inc": bson.M{model.FieldVersion: 1},
	}
	var doc model.PlayerDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{model.FieldID: string(id)}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, r.notFoundOr(OpModify, err, playerMeta(id))
	}
	return model.PlayerDocToEntity(doc), nil
}

func (r *PlayerRepo) Save(ctx context.Context, p *entity.Player) (*entity.Player, error) {
	if err := r.ready(OpSave); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, entity.ErrInvalidArgument.WithData("reason", "player is nil")
	}
	doc := model.PlayerToDoc(p)
	expected := doc.Version
	doc.Version = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{model.FieldID: doc.ID, model.FieldVersion: expected}, doc)
	if err != nil {
		return nil, errs.Wrap(OpSave, errs.KindInfra, err, playerMeta(p.ID))
	}
	if res.MatchedCount == 0 {
		exists, err := r.exists(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, entity.ErrVersionConflict.WithDataMap(map[string]any{"player_id": doc.ID, "version": expected})
		}
		return nil, entity.ErrPlayerNotFound.WithData("player_id", doc.ID)
	}
	return model.PlayerDocToEntity(doc), nil
}

func (r *PlayerRepo) CreateItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error) {
	if err := r.ready(OpCreateItem); err != nil {
		return nil, err
	}
	itemDoc := model.ItemToDoc(item)
	res, err := r.coll.UpdateOne(ctx, itemAbsentFilter(id, item.ID), pushItemUpdate(itemDoc))
	if err != nil {
		return nil, errs.Wrap(OpCreateItem, errs.KindInfra, err, itemMeta(id, item.ID))
	}
	if res.MatchedCount == 0 {
		return nil, r.classifyMiss(ctx, id, entity.ErrItemExists.WithDataMap(itemMeta(id, item.ID)))
	}
	created := model.ItemDocToEntity(itemDoc)
	return &created, nil
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

// UpdateItem 只更新 level；items.$ 定位到第一个 id 匹配的元素。
func (r *PlayerRepo) UpdateItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error) {
	if err := r.ready(OpUpdateItem); err != nil {
		return nil, err
	}
	var doc model.PlayerDoc
	err := r.coll.FindOneAndUpdate(ctx, itemPresentFilter(id, item.ID), itemLevelUpdate(item.Level),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.classifyMiss(ctx, id, entity.ErrItemNotFound.WithDataMap(itemMeta(id, item.ID)))
		}
		return nil, errs.Wrap(OpUpdateItem, errs.KindInfra, err, itemMeta(id, item.ID))
	}
	return pickItem(doc, id, item.ID)
}

// DeleteItem 用 $pull 原子移除，返回移除前存储中的那个道具。
func (r *PlayerRepo) DeleteItem(ctx context.Context, id entity.PlayerID, item entity.Item) (*entity.Item, error) {
	if err := r.ready(OpDeleteItem); err != nil {
		return nil, err
	}
	var before model.PlayerDoc
	err := r.coll.FindOneAndUpdate(ctx, itemPresentFilter(id, item.ID), pullItemUpdate(item.ID),
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.classifyMiss(ctx, id, entity.ErrItemNotFound.WithDataMap(itemMeta(id, item.ID)))
		}
		return nil, errs.Wrap(OpDeleteItem, errs.KindInfra, err, itemMeta(id, item.ID))
	}
	return pickItem(before, id, item.ID)
}

func (r *PlayerRepo) GetPlayersWithXscore(ctx context.Context, x int) ([]*entity.Player, error) {
	return r.find(ctx, bson.M{model.FieldScore: bson.M{"$gte": x}})
}

func (r *PlayerRepo) GetPlayerWithName(ctx context.Context, name string) (*entity.Player, error) {
	return r.findOne(ctx, OpGet, bson.M{model.FieldName: name}, map[string]any{"name": name})
}

// GetPlayersWithNumItems 精确匹配 items 长度；负数直接返回空，$size 不接受负数。
func (r *PlayerRepo) GetPlayersWithNumItems(ctx context.Context, count int) ([]*entity.Player, error) {
	if count < 0 {
		return []*entity.Player{}, nil
	}
	return r.find(ctx, bson.M{model.FieldItems: bson.M{"$size": count}})
}

// GetBestPlayers 同分时按 created_at、_id 升序，保证前 10 名在多次调用间稳定。
func (r *PlayerRepo) GetBestPlayers(ctx context.Context) ([]*entity.Player, error) {
	opts := options.Find().
		SetSort(bestPlayersSort()).
		SetLimit(port.BestPlayersLimit)
	return r.find(ctx, bson.M{}, opts)
}

func (r *PlayerRepo) GetPlayersWithTag(ctx context.Context, tag string) ([]*entity.Player, error) {
	return r.find(ctx, bson.M{model.FieldTags: tag})
}

func (r *PlayerRepo) ChangePlayerName(ctx context.Context, id entity.PlayerID, name string) (entity.UpdateResult, error) {
	return r.updateOne(ctx, bson.M{model.FieldID: string(id)}, bson.M{
		"$set": bson.M{model.FieldName: name},
		"$inc": bson.M{model.FieldVersion: 1},
	}, playerMeta(id))
}

func (r *PlayerRepo) IncrementScore(ctx context.Context, id entity.PlayerID, delta int) (entity.UpdateResult, error) {
	return r.updateOne(ctx, bson.M{model.FieldID: string(id)}, bson.M{
		"$inc": bson.M{model.FieldScore: delta, model.FieldVersion: 1},
	}, playerMeta(id))
}

// PushItem 原子追加；玩家不存在或同 id 道具已存在时 MatchedCount 为 0。
func (r *PlayerRepo) PushItem(ctx context.Context, id entity.PlayerID, item entity.Item) (entity.UpdateResult, error) {
	return r.updateOne(ctx, itemAbsentFilter(id, item.ID), pushItemUpdate(model.ItemToDoc(item)), itemMeta(id, item.ID))
}

func (r *PlayerRepo) AddTagToPlayer(ctx context.Context, id entity.PlayerID, tag string) (entity.UpdateResult, error) {
	return r.updateOne(ctx, bson.M{model.FieldID: string(id)}, bson.M{
		"$push": bson.M{model.FieldTags: tag},
		"$inc":  bson.M{model.FieldVersion: 1},
	}, playerMeta(id))
}

func (r *PlayerRepo) ready(op string) error {
	if r == nil || r.coll == nil {
		return errs.Wrap(op, errs.KindInfra, errNilCollection, nil)
	}
	return nil
}

func (r *PlayerRepo) findOne(ctx context.Context, op string, filter bson.M, meta map[string]any) (*entity.Player, error) {
	if err := r.ready(op); err != nil {
		return nil, err
	}
	var doc model.PlayerDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, r.notFoundOr(op, err, meta)
	}
	return model.PlayerDocToEntity(doc), nil
}

func (r *PlayerRepo) find(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]*entity.Player, error) {
	if err := r.ready(OpFind); err != nil {
		return nil, err
	}
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errs.Wrap(OpFind, errs.KindInfra, err, nil)
	}
	var docs []model.PlayerDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(OpFind, errs.KindDecode, err, nil)
	}
	return model.PlayerDocsToEntities(docs), nil
}

func (r *PlayerRepo) updateOne(ctx context.Context, filter, update bson.M, meta map[string]any) (entity.UpdateResult, error) {
	if err := r.ready(OpUpdate); err != nil {
		return entity.UpdateResult{}, err
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return entity.UpdateResult{}, errs.Wrap(OpUpdate, errs.KindInfra, err, meta)
	}
	return entity.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *PlayerRepo) exists(ctx context.Context, id entity.PlayerID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{model.FieldID: string(id)}, options.Count().SetLimit(1))
	if err != nil {
		return false, errs.Wrap(OpExists, errs.KindInfra, err, playerMeta(id))
	}
	return n > 0, nil
}

// classifyMiss 带守卫的更新没有命中时，区分“玩家不存在”与“道具维度的失败”。
func (r *PlayerRepo) classifyMiss(ctx context.Context, id entity.PlayerID, itemErr error) error {
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return entity.ErrPlayerNotFound.WithDataMap(playerMeta(id))
	}
	return itemErr
}

func (r *PlayerRepo) notFoundOr(op string, err error, meta map[string]any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.ErrPlayerNotFound.WithDataMap(meta)
	}
	return errs.Wrap(op, errs.KindInfra, err, meta)
}

func insertErr(id entity.PlayerID, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return entity.ErrPlayerExists.WithData("player_id", string(id)).WithCause(err)
	}
	return errs.Wrap(OpCreate, errs.KindInfra, err, playerMeta(id))
}

func bestPlayersSort() bson.D {
	return bson.D{
		{Key: model.FieldScore, Value: -1},
		{Key: model.FieldCreatedAt, Value: 1},
		{Key: model.FieldID, Value: 1},
	}
}

func itemAbsentFilter(id entity.PlayerID, itemID entity.ItemID) bson.M {
	return bson.M{
		model.FieldID:     string(id),
		model.FieldItemID: bson.M{"$ne": string(itemID)},
	}
}

func itemPresentFilter(id entity.PlayerID, itemID entity.ItemID) bson.M {
	return bson.M{
		model.FieldID:     string(id),
		model.FieldItemID: string(itemID),
	}
}

func pushItemUpdate(doc model.ItemDoc) bson.M {
	return bson.M{
		"$push": bson.M{model.FieldItems: doc},
		"$inc":  bson.M{model.FieldVersion: 1},
	}
}

func itemLevelUpdate(level int) bson.M {
	return bson.M{
		"$set": bson.M{model.FieldItemLevel: level},
		"$inc": bson.M{model.FieldVersion: 1},
	}
}

func pullItemUpdate(itemID entity.ItemID) bson.M {
	return bson.M{
		"$pull": bson.M{model.FieldItems: bson.M{"id": string(itemID)}},
		"$inc":  bson.M{model.FieldVersion: 1},
	}
}

func pickItem(doc model.PlayerDoc, id entity.PlayerID, itemID entity.ItemID) (*entity.Item, error) {
	for _, d := range doc.Items {
		if d.ID == string(itemID) {
			it := model.ItemDocToEntity(d)
			return &it, nil
		}
	}
	return nil, entity.ErrItemNotFound.WithDataMap(itemMeta(id, itemID))
}

func playerMeta(id entity.PlayerID) map[string]any {
	return map[string]any{"player_id": string(id)}
}

func itemMeta(id entity.PlayerID, itemID entity.ItemID) map[string]any {
	return map[string]any{"player_id": string(id), "item_id": string(itemID)}
}

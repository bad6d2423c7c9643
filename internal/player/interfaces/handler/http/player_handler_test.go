package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"PlayerHub/internal/player/app"
	"PlayerHub/internal/player/app/port"
	"PlayerHub/internal/player/entity"
	"PlayerHub/internal/player/errs"
	"PlayerHub/internal/player/infra/persistence/memory"
	"PlayerHub/internal/player/interfaces/handler/http/dto"
	"PlayerHub/internal/shared/transport"
	transporthttp "PlayerHub/internal/shared/transport/http"
	"PlayerHub/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type apiClient struct {
	t *testing.T
	h nethttp.Handler
}

func newClient(t *testing.T, repo port.PlayerRepository) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := transporthttp.NewHttpServer(":0", gin.New(), logx.Nop())
	NewPlayerHandler(app.NewPlayerService(repo), logx.Nop()).HttpRegister(s.Group())
	return &apiClient{t: t, h: s.Handler()}
}

func (c *apiClient) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), "body=%s", w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (c *apiClient) createPlayer(name string) dto.Player {
	c.t.Helper()
	status, env := c.do(nethttp.MethodPost, "/api/players", gin.H{"name": name})
	require.Equal(c.t, nethttp.StatusOK, status)
	require.Equal(c.t, transport.OK, env.Code)
	return decode[dto.Player](c.t, env)
}

func TestCreateAndGet(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())

	p := c.createPlayer("Ann")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, int64(0), p.Version)
	assert.NotNil(t, p.Items)
	assert.NotZero(t, p.CreatedAt)

	status, env := c.do(nethttp.MethodGet, "/api/players/"+p.ID, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, p, decode[dto.Player](t, env))
}

func TestGet_错误映射(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())

	status, env := c.do(nethttp.MethodGet, "/api/players/00000000-0000-4000-8000-000000000001", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, transport.PlayerNotFound, env.Code)

	status, env = c.do(nethttp.MethodGet, "/api/players/not-a-uuid", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, transport.InvalidParam, env.Code)
	assert.Equal(t, app.ReasonInvalidPlayerID.Message, env.Msg)
}

func TestCreate_请求体错误(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())

	status, env := c.do(nethttp.MethodPost, "/api/players", gin.H{"score": 1})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, transport.InvalidParam, env.Code)

	status, env = c.do(nethttp.MethodPost, "/api/players", gin.H{"name": "   "})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, app.ReasonEmptyName.Message, env.Msg)
}

func TestItems(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())
	p := c.createPlayer("Ann")
	base := "/api/players/" + p.ID + "/items"

	status, env := c.do(nethttp.MethodPost, base, gin.H{"level": 1, "type": "sword"})
	require.Equal(t, nethttp.StatusOK, status)
	it := decode[dto.Item](t, env)
	assert.Equal(t, "sword", it.Type)

	status, env = c.do(nethttp.MethodPut, base+"/"+it.ID, gin.H{"level": 5})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, 5, decode[dto.Item](t, env).Level)

	status, env = c.do(nethttp.MethodPost, base, gin.H{"level": -1})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, app.ReasonNegativeLevel.Message, env.Msg)

	status, env = c.do(nethttp.MethodGet, base, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]dto.Item](t, env), 1)

	status, _ = c.do(nethttp.MethodDelete, base+"/"+it.ID, nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, env = c.do(nethttp.MethodGet, base+"/"+it.ID, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, transport.ItemNotFound, env.Code)

	missing := "/api/players/00000000-0000-4000-8000-000000000001/items"
	status, env = c.do(nethttp.MethodPut, missing+"/"+it.ID, gin.H{"level": 1})
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, transport.PlayerNotFound, env.Code)
}

func TestPushItem(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())
	p := c.createPlayer("Ann")

	status, env := c.do(nethttp.MethodPost, "/api/players/"+p.ID+"/items/push", gin.H{"level": 2})
	require.Equal(t, nethttp.StatusOK, status)
	resp := decode[dto.PushItemResp](t, env)
	assert.Equal(t, int64(1), resp.MatchedCount)
	require.NotNil(t, resp.Item)
	assert.Equal(t, 2, resp.Item.Level)

	status, env = c.do(nethttp.MethodPost, "/api/players/00000000-0000-4000-8000-000000000001/items/push", gin.H{"level": 2})
	require.Equal(t, nethttp.StatusOK, status)
	resp = decode[dto.PushItemResp](t, env)
	assert.Equal(t, int64(0), resp.MatchedCount)
	assert.Nil(t, resp.Item)
}

func TestTargetedUpdates(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())
	p := c.createPlayer("Ann")
	base := "/api/players/" + p.ID

	for _, req := range []struct {
		method, path string
		body         any
	}{
		{nethttp.MethodPut, base + "/name", gin.H{"name": "Anna"}},
		{nethttp.MethodPost, base + "/score", gin.H{"delta": 7}},
		{nethttp.MethodPost, base + "/tags", gin.H{"tag": "vip"}},
	} {
		status, env := c.do(req.method, req.path, req.body)
		require.Equal(t, nethttp.StatusOK, status, req.path)
		assert.Equal(t, dto.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, decode[dto.UpdateResult](t, env))
	}

	_, env := c.do(nethttp.MethodGet, base, nil)
	got := decode[dto.Player](t, env)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, 7, got.Score)
	assert.Equal(t, []string{"vip"}, got.Tags)
	assert.Equal(t, int64(3), got.Version)

	status, env := c.do(nethttp.MethodPost, "/api/players/00000000-0000-4000-8000-000000000001/score", gin.H{"delta": 1})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, dto.UpdateResult{}, decode[dto.UpdateResult](t, env))

	status, _ = c.do(nethttp.MethodPost, base+"/score", gin.H{})
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestModifyAndSave(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())
	p := c.createPlayer("Ann")
	base := "/api/players/" + p.ID

	status, env := c.do(nethttp.MethodPatch, base, gin.H{"score": 30})
	require.Equal(t, nethttp.StatusOK, status)
	modified := decode[dto.Player](t, env)
	assert.Equal(t, 30, modified.Score)
	assert.Equal(t, int64(1), modified.Version)

	status, env = c.do(nethttp.MethodPut, base, gin.H{"name": "Anna", "score": 1, "tags": []string{"a"}, "version": modified.Version})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, int64(2), decode[dto.Player](t, env).Version)

	status, env = c.do(nethttp.MethodPut, base, gin.H{"name": "Old", "version": modified.Version})
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, transport.VersionConflict, env.Code)

	status, env = c.do(nethttp.MethodDelete, base, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Anna", decode[dto.Player](t, env).Name)

	status, _ = c.do(nethttp.MethodDelete, base, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestList_过滤(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())
	ann := c.createPlayer("Ann")
	bob := c.createPlayer("Bob")
	c.do(nethttp.MethodPost, "/api/players/"+ann.ID+"/score", gin.H{"delta": 50})
	c.do(nethttp.MethodPost, "/api/players/"+bob.ID+"/tags", gin.H{"tag": "vip"})
	c.do(nethttp.MethodPost, "/api/players/"+bob.ID+"/items", gin.H{"level": 1})

	list := func(query string) []dto.Player {
		status, env := c.do(nethttp.MethodGet, "/api/players"+query, nil)
		require.Equal(t, nethttp.StatusOK, status, query)
		return decode[[]dto.Player](t, env)
	}
	names := func(ps []dto.Player) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Ann", "Bob"}, names(list("")))
	assert.Equal(t, []string{"Ann"}, names(list("?min_score=10")))
	assert.Equal(t, []string{"Bob"}, names(list("?num_items=1")))
	assert.Equal(t, []string{"Bob"}, names(list("?tag=vip")))
	assert.Empty(t, list("?tag=none"))

	status, env := c.do(nethttp.MethodGet, "/api/players?name=Bob", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, bob.ID, decode[dto.Player](t, env).ID)

	status, env = c.do(nethttp.MethodGet, "/api/players?name=Nobody", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, transport.PlayerNotFound, env.Code)

	for _, q := range []string{"?min_score=abc", "?num_items=x", "?min_score=1&tag=vip"} {
		status, env = c.do(nethttp.MethodGet, "/api/players"+q, nil)
		assert.Equal(t, nethttp.StatusBadRequest, status, q)
		assert.Equal(t, transport.InvalidParam, env.Code, q)
	}
}

func TestBest(t *testing.T) {
	c := newClient(t, memory.NewPlayerRepo())
	for i, name := range []string{"a", "b", "c"} {
		p := c.createPlayer(name)
		c.do(nethttp.MethodPost, "/api/players/"+p.ID+"/score", gin.H{"delta": i * 10})
	}

	status, env := c.do(nethttp.MethodGet, "/api/players/best", nil)
	require.Equal(t, nethttp.StatusOK, status)
	best := decode[[]dto.Player](t, env)
	require.Len(t, best, 3)
	assert.Equal(t, []int{20, 10, 0}, []int{best[0].Score, best[1].Score, best[2].Score})
}

type brokenRepo struct {
	port.PlayerRepository
}

func (brokenRepo) GetBestPlayers(context.Context) ([]*entity.Player, error) {
	return nil, errs.Wrap("repo.player.Find", errs.KindInfra, errors.New("server selection timeout"), nil)
}

func TestBest_存储不可用(t *testing.T) {
	c := newClient(t, brokenRepo{})

	status, env := c.do(nethttp.MethodGet, "/api/players/best", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, status)
	assert.Equal(t, transport.StoreUnavailable, env.Code)
	assert.NotContains(t, env.Msg, "server selection")
}

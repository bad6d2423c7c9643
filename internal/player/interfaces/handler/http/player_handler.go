package http

import (
	nethttp "net/http"
	"strconv"

	"PlayerHub/internal/player/app"
	"PlayerHub/internal/player/entity"
	"PlayerHub/internal/player/interfaces/handler"
	"PlayerHub/internal/player/interfaces/handler/http/dto"
	"PlayerHub/internal/shared/transport"
	"PlayerHub/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

// 列表查询支持的过滤参数，一次只能带一个。
const (
	queryMinScore = "min_score"
	queryName     = "name"
	queryNumItems = "num_items"
	queryTag      = "tag"
)

type PlayerHandler struct {
	svc *app.PlayerService
	log logx.Logger
}

func NewPlayerHandler(svc *app.PlayerService, log logx.Logger) *PlayerHandler {
	if log == nil {
		log = logx.Nop()
	}
	return &PlayerHandler{svc: svc, log: log}
}

func (h *PlayerHandler) HttpRegister(group *gin.RouterGroup) {
	g := group.Group("/api/players")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/best", h.Best)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Save)
	g.PATCH("/:id", h.Modify)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/name", h.ChangeName)
	g.POST("/:id/score", h.IncrementScore)
	g.POST("/:id/tags", h.AddTag)

	g.GET("/:id/items", h.ListItems)
	g.POST("/:id/items", h.CreateItem)
	g.POST("/:id/items/push", h.PushItem)
	g.GET("/:id/items/:itemId", h.GetItem)
	g.PUT("/:id/items/:itemId", h.UpdateItem)
	g.DELETE("/:id/items/:itemId", h.DeleteItem)
}

func (h *PlayerHandler) Create(c *gin.Context) {
	var req dto.CreatePlayerReq
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.CreatePlayer(c.Request.Context(), app.CreatePlayerCmd{Name: req.Name, Score: req.Score, Tags: req.Tags})
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayer(p))
}

// List 不带参数返回全部；带一个过滤参数时走对应查询。
func (h *PlayerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filters := 0
	for _, k := range []string{queryMinScore, queryName, queryNumItems, queryTag} {
		if _, ok := c.GetQuery(k); ok {
			filters++
		}
	}
	if filters > 1 {
		h.error(c, app.InvalidArgument(app.ReasonInvalidQuery))
		return
	}

	var (
		ps  []*entity.Player
		err error
	)
	if v, ok := c.GetQuery(queryName); ok {
		p, nerr := h.svc.PlayerWithName(ctx, v)
		if nerr != nil {
			h.error(c, nerr)
			return
		}
		h.ok(c, dto.FromPlayer(p))
		return
	}
	if v, ok := c.GetQuery(queryMinScore); ok {
		x, perr := strconv.Atoi(v)
		if perr != nil {
			h.error(c, app.InvalidArgument(app.ReasonInvalidQuery))
			return
		}
		ps, err = h.svc.PlayersWithMinScore(ctx, x)
	} else if v, ok := c.GetQuery(queryNumItems); ok {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			h.error(c, app.InvalidArgument(app.ReasonInvalidQuery))
			return
		}
		ps, err = h.svc.PlayersWithNumItems(ctx, n)
	} else if v, ok := c.GetQuery(queryTag); ok {
		ps, err = h.svc.PlayersWithTag(ctx, v)
	} else {
		ps, err = h.svc.ListPlayers(ctx)
	}
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayers(ps))
}

func (h *PlayerHandler) Best(c *gin.Context) {
	ps, err := h.svc.BestPlayers(c.Request.Context())
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayers(ps))
}

func (h *PlayerHandler) Get(c *gin.Context) {
	p, err := h.svc.GetPlayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayer(p))
}

func (h *PlayerHandler) Save(c *gin.Context) {
	var req dto.SavePlayerReq
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.SavePlayer(c.Request.Context(), c.Param("id"), app.SavePlayerCmd{
		Name:    req.Name,
		Score:   req.Score,
		Tags:    req.Tags,
		Version: *req.Version,
	})
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayer(p))
}

func (h *PlayerHandler) Modify(c *gin.Context) {
	var req dto.ModifyPlayerReq
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.ModifyPlayer(c.Request.Context(), c.Param("id"), entity.ModifiedPlayer{Score: *req.Score})
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayer(p))
}

func (h *PlayerHandler) Delete(c *gin.Context) {
	p, err := h.svc.DeletePlayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromPlayer(p))
}

func (h *PlayerHandler) ChangeName(c *gin.Context) {
	var req dto.ChangeNameReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.ChangeName(c.Request.Context(), c.Param("id"), req.Name)
	h.ack(c, res, err)
}

func (h *PlayerHandler) IncrementScore(c *gin.Context) {
	var req dto.IncrementScoreReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.IncrementScore(c.Request.Context(), c.Param("id"), *req.Delta)
	h.ack(c, res, err)
}

func (h *PlayerHandler) AddTag(c *gin.Context) {
	var req dto.AddTagReq
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.AddTag(c.Request.Context(), c.Param("id"), req.Tag)
	h.ack(c, res, err)
}

func (h *PlayerHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromItems(items))
}

func (h *PlayerHandler) CreateItem(c *gin.Context) {
	var req dto.NewItemReq
	if !h.bind(c, &req) {
		return
	}
	it, err := h.svc.CreateItem(c.Request.Context(), c.Param("id"), app.NewItemCmd{Level: *req.Level, Type: req.Type})
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromItem(it))
}

// PushItem 只返回回执；MatchedCount 为 0 时不回传道具。
func (h *PlayerHandler) PushItem(c *gin.Context) {
	var req dto.NewItemReq
	if !h.bind(c, &req) {
		return
	}
	res, it, err := h.svc.PushItem(c.Request.Context(), c.Param("id"), app.NewItemCmd{Level: *req.Level, Type: req.Type})
	if err != nil {
		h.error(c, err)
		return
	}
	resp := dto.PushItemResp{UpdateResult: dto.FromUpdateResult(res)}
	if res.MatchedCount > 0 {
		resp.Item = dto.FromItem(it)
	}
	h.ok(c, resp)
}

func (h *PlayerHandler) GetItem(c *gin.Context) {
	it, err := h.svc.GetItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromItem(it))
}

func (h *PlayerHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateItemReq
	if !h.bind(c, &req) {
		return
	}
	it, err := h.svc.UpdateItemLevel(c.Request.Context(), c.Param("id"), c.Param("itemId"), *req.Level)
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromItem(it))
}

func (h *PlayerHandler) DeleteItem(c *gin.Context) {
	it, err := h.svc.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromItem(it))
}

func (h *PlayerHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.error(c, app.InvalidArgument(app.ReasonInvalidBody))
		return false
	}
	return true
}

func (h *PlayerHandler) ack(c *gin.Context, res entity.UpdateResult, err error) {
	if err != nil {
		h.error(c, err)
		return
	}
	h.ok(c, dto.FromUpdateResult(res))
}

func (h *PlayerHandler) ok(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, dto.Success(transport.OK, data))
}

func (h *PlayerHandler) error(c *gin.Context, err error) {
	status, code, msg := handler.HandleError(c.Request.Context(), h.log, action(c), err)
	c.JSON(status, dto.Error(code, msg))
}

func action(c *gin.Context) string {
	return c.Request.Method + " " + c.FullPath()
}

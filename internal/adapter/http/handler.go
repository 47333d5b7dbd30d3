package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	contentstatic "outpost/internal/adapter/content/static"
	"outpost/internal/app/action"
	"outpost/internal/app/control"
	"outpost/internal/app/game"
	"outpost/internal/app/ports"
	"outpost/internal/app/replay"
	"outpost/internal/app/status"
	"outpost/internal/domain/incident"
	"outpost/internal/domain/survival"
)

type Handler struct {
	ActionUC  action.UseCase
	StatusUC  status.UseCase
	ReplayUC  replay.UseCase
	ControlUC control.UseCase
	Content   contentFiles
	KPI       kpiSnapshotProvider
}

type contentFiles interface {
	Index(ctx context.Context) (contentstatic.Index, error)
	File(ctx context.Context, path string) ([]byte, error)
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.GET("/state", h.state)
	api.POST("/click", h.click)
	api.POST("/decide", h.decide)
	api.POST("/pause", h.control(control.OpPause))
	api.POST("/resume", h.control(control.OpResume))
	api.POST("/save", h.control(control.OpSave))
	api.GET("/log", h.log)

	s.GET("/content/index.json", h.contentIndex)
	s.GET("/content/*filepath", h.contentFile)
	s.GET("/ops/kpi", h.kpi)
}

type clickRequest struct {
	PersonID string `json:"person_id"`
	ActionID string `json:"action_id"`
	OptionID string `json:"option_id,omitempty"`
}

type decideRequest struct {
	Yes *bool `json:"yes"`
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) click(c context.Context, ctx *app.RequestContext) {
	var body clickRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ActionUC.Execute(c, action.Request{
		PersonID: body.PersonID,
		ActionID: body.ActionID,
		OptionID: body.OptionID,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) decide(c context.Context, ctx *app.RequestContext) {
	var body decideRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Yes == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "yes is required")
		return
	}
	resp, err := h.ControlUC.Execute(c, control.Request{Op: control.OpDecide, Yes: *body.Yes})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) control(op control.Op) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		resp, err := h.ControlUC.Execute(c, control.Request{Op: op})
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	}
}

func (h Handler) log(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	var since time.Time
	if raw := strings.TrimSpace(string(ctx.Query("since"))); raw != "" {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "since must be unix seconds")
			return
		}
		since = time.Unix(sec, 0).UTC()
	}
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		PersonID: string(ctx.Query("person_id")),
		Topic:    string(ctx.Query("topic")),
		Since:    since,
		Limit:    limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) contentIndex(c context.Context, ctx *app.RequestContext) {
	if h.Content == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "content provider not configured")
		return
	}
	idx, err := h.Content.Index(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, idx)
}

func (h Handler) contentFile(c context.Context, ctx *app.RequestContext) {
	path := strings.TrimPrefix(string(ctx.Param("filepath")), "/")
	if path == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_filepath", "invalid filepath")
		return
	}
	if h.Content == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "content provider not configured")
		return
	}
	b, err := h.Content.File(c, path)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "application/yaml; charset=utf-8", b)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, survival.ErrBusy):
		writeErrorBody(ctx, consts.StatusConflict, "person_busy", err.Error())
	case errors.Is(err, survival.ErrLocked):
		writeErrorBody(ctx, consts.StatusConflict, "action_locked", err.Error())
	case errors.Is(err, survival.ErrDead):
		writeErrorBody(ctx, consts.StatusConflict, "person_dead", err.Error())
	case errors.Is(err, game.ErrPaused):
		writeErrorBody(ctx, consts.StatusConflict, "game_paused", err.Error())
	case errors.Is(err, game.ErrGameOver):
		writeErrorBody(ctx, consts.StatusConflict, "game_over", err.Error())
	case errors.Is(err, incident.ErrNoDecision):
		writeErrorBody(ctx, consts.StatusConflict, "no_decision", err.Error())
	case errors.Is(err, survival.ErrOptionRequired):
		writeErrorBody(ctx, consts.StatusBadRequest, "option_required", err.Error())
	case errors.Is(err, survival.ErrUnknownAction):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_action", err.Error())
	case errors.Is(err, game.ErrUnknownPerson):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_person", err.Error())
	case errors.Is(err, contentstatic.ErrInvalidContentPath):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_filepath", err.Error())
	case errors.Is(err, action.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, control.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", "not found")
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

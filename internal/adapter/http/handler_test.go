package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"

	contentstatic "outpost/internal/adapter/content/static"
	metricsinmem "outpost/internal/adapter/metrics/inmemory"
	"outpost/internal/adapter/repo/memory"
	"outpost/internal/app/action"
	"outpost/internal/app/control"
	"outpost/internal/app/game"
	"outpost/internal/app/ports"
	"outpost/internal/app/replay"
	"outpost/internal/app/status"
	"outpost/internal/domain/content"
	"outpost/internal/domain/content/contenttest"
	"outpost/internal/domain/world"
)

type stubRunner struct{ g *game.Game }

func (r stubRunner) Do(_ context.Context, fn func(g *game.Game) error) error { return fn(r.g) }
func (r stubRunner) View() game.View                                         { return r.g.View() }

func newHandler(t *testing.T) (Handler, *memory.Journal) {
	t.Helper()
	tables := contenttest.Tables()
	tables.Settings.IncidentRate = -1
	cat, err := content.NewCatalog(tables, content.DefaultHooks())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := game.New(cat, game.Options{
		Clock: world.NewClock(world.ClockConfig{HourDuration: time.Second}),
		Now:   func() time.Time { return now },
		NewID: func() string { return "p1" },
	})
	g.Start(now)
	runner := stubRunner{g: g}
	journal := memory.NewJournal()
	return Handler{
		ActionUC:  action.UseCase{Game: runner, Metrics: metricsinmem.NewRecorder()},
		StatusUC:  status.UseCase{Game: runner, HourDuration: time.Second},
		ReplayUC:  replay.UseCase{Events: journal},
		ControlUC: control.UseCase{Game: runner, Now: func() time.Time { return now }},
		Content:   contentstatic.Provider{},
	}, journal
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Error.Code
}

func post(h func(context.Context, *app.RequestContext), body string) *app.RequestContext {
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(body))
	h(context.Background(), ctx)
	return ctx
}

func TestState_ReturnsView(t *testing.T) {
	h, _ := newHandler(t)
	ctx := &app.RequestContext{}
	h.state(context.Background(), ctx)

	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("status = %d", got)
	}
	var body status.Response
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.State.People) != 1 || body.State.People[0].ID != "p1" {
		t.Fatalf("unexpected people: %+v", body.State.People)
	}
}

func TestClick_StartsThenRejectsBusy(t *testing.T) {
	h, _ := newHandler(t)

	ctx := post(h.click, `{"person_id":"p1","action_id":"gather"}`)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("first click status = %d body=%s", got, ctx.Response.Body())
	}

	ctx = post(h.click, `{"person_id":"p1","action_id":"sleep"}`)
	if got := ctx.Response.StatusCode(); got != consts.StatusConflict {
		t.Fatalf("busy click status = %d", got)
	}
	if code := errorCode(t, ctx); code != "person_busy" {
		t.Fatalf("code = %q", code)
	}
}

func TestClick_Errors(t *testing.T) {
	h, _ := newHandler(t)
	cases := []struct {
		body   string
		status int
		code   string
	}{
		{`{`, consts.StatusBadRequest, "invalid_json"},
		{`{"person_id":"p1"}`, consts.StatusBadRequest, "bad_request"},
		{`{"person_id":"ghost","action_id":"gather"}`, consts.StatusNotFound, "unknown_person"},
		{`{"person_id":"p1","action_id":"explore"}`, consts.StatusNotFound, "unknown_action"},
	}
	for _, tc := range cases {
		ctx := post(h.click, tc.body)
		if got := ctx.Response.StatusCode(); got != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.body, got, tc.status)
		}
		if code := errorCode(t, ctx); code != tc.code {
			t.Fatalf("%s: code = %q, want %q", tc.body, code, tc.code)
		}
	}
}

func TestPause_BlocksClicks(t *testing.T) {
	h, _ := newHandler(t)
	ctx := post(h.control(control.OpPause), "")
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("pause status = %d", got)
	}
	ctx = post(h.click, `{"person_id":"p1","action_id":"gather"}`)
	if code := errorCode(t, ctx); code != "game_paused" {
		t.Fatalf("code = %q", code)
	}
	ctx = post(h.control(control.OpResume), "")
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("resume status = %d", got)
	}
}

func TestDecide_Validation(t *testing.T) {
	h, _ := newHandler(t)
	ctx := post(h.decide, `{}`)
	if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
		t.Fatalf("missing yes status = %d", got)
	}
	ctx = post(h.decide, `{"yes":true}`)
	if code := errorCode(t, ctx); code != "no_decision" {
		t.Fatalf("code = %q", code)
	}
}

func TestSave_NotConfigured(t *testing.T) {
	h, _ := newHandler(t)
	ctx := post(h.control(control.OpSave), "")
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("status = %d", got)
	}
}

func TestLog_QueriesJournal(t *testing.T) {
	h, journal := newHandler(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = journal.Append(context.Background(), []ports.Event{
		{Seq: 1, Topic: "click", PersonID: "p1", OccurredAt: at, Payload: map[string]any{"actionId": "gather"}},
	})

	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/api/log?person_id=p1&limit=10")
	h.log(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("status = %d", got)
	}
	var body replay.Response
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Events) != 1 || body.Summary.Clicks["gather"] != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}

	ctx = &app.RequestContext{}
	ctx.Request.SetRequestURI("/api/log?since=yesterday")
	h.log(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
		t.Fatalf("bad since status = %d", got)
	}
}

func TestContent_IndexAndFile(t *testing.T) {
	h, _ := newHandler(t)

	ctx := &app.RequestContext{}
	h.contentIndex(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("index status = %d", got)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "filepath", Value: "/actions.yaml"}}
	h.contentFile(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("file status = %d", got)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "filepath", Value: "/"}}
	h.contentFile(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
		t.Fatalf("empty path status = %d", got)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "filepath", Value: "/missing.yaml"}}
	h.contentFile(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("missing file status = %d", got)
	}
}

func TestKPI(t *testing.T) {
	h, _ := newHandler(t)
	ctx := &app.RequestContext{}
	h.kpi(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("unconfigured status = %d", got)
	}

	rec := metricsinmem.NewRecorder()
	rec.RecordSuccess("gather")
	h.KPI = rec
	ctx = &app.RequestContext{}
	h.kpi(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("status = %d", got)
	}
}

func TestWriteError_Internal(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, errors.New("disk on fire"))
	if got := ctx.Response.StatusCode(); got != consts.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
	if code := errorCode(t, ctx); code != "internal_error" {
		t.Fatalf("code = %q", code)
	}
}

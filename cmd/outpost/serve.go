package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	contentstatic "outpost/internal/adapter/content/static"
	httpadapter "outpost/internal/adapter/http"
	metricsinmem "outpost/internal/adapter/metrics/inmemory"
	"outpost/internal/adapter/ws"
	"outpost/internal/app/action"
	"outpost/internal/app/control"
	"outpost/internal/app/game"
	"outpost/internal/app/replay"
	"outpost/internal/app/session"
	"outpost/internal/app/status"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation with the HTTP API and event websocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	cfg, log := opts.cfg, opts.log

	cat, err := loadCatalog(ctx, contentstatic.Provider{Root: cfg.Content.Dir})
	if err != nil {
		return err
	}
	pool, err := newNamePool(ctx, cfg, log)
	if err != nil {
		return err
	}
	deps, cleanup, err := openStorage(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	g := newGame(cat, cfg, log, pool, time.Now)
	sess := session.New(g, deps, session.Config{
		Slot:         cfg.Game.Slot,
		TickInterval: cfg.Game.TickInterval,
		Logger:       log,
	})
	resume(ctx, sess, log)

	kpi := metricsinmem.NewRecorder()
	hub := ws.NewHub(func() any { return sess.View() }, log)
	sess.Listen(kpi.ObserveEvent)
	sess.Listen(hub.Broadcast)

	h := httpadapter.Handler{
		ActionUC:  action.UseCase{Game: sess, Metrics: kpi},
		StatusUC:  status.UseCase{Game: sess, HourDuration: cfg.Game.HourDuration},
		ReplayUC:  replay.UseCase{Events: deps.Journal},
		ControlUC: control.UseCase{Game: sess, Saver: sess, Now: time.Now},
		Content:   contentstatic.Provider{Root: cfg.Content.Dir},
		KPI:       kpi,
	}
	hz := server.Default(server.WithHostPorts(cfg.Server.HTTPAddr), server.WithDisablePrintRoute(true))
	h.RegisterRoutes(hz)

	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = sess.Run(runCtx)
	}()

	errCh := make(chan error, 2)
	go func() {
		if err := hz.Run(); err != nil {
			errCh <- err
		}
	}()

	var wsSrv *http.Server
	if cfg.Server.WSAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		wsSrv = &http.Server{Addr: cfg.Server.WSAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := wsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}
	log.Info("outpost serving",
		zap.String("http", cfg.Server.HTTPAddr),
		zap.String("ws", cfg.Server.WSAddr),
		zap.String("database", cfg.Database.Type),
		zap.String("slot", cfg.Game.Slot))

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		log.Error("server stopped", zap.Error(runErr))
	}

	shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer done()
	if err := hz.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if wsSrv != nil {
		if err := wsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("ws shutdown", zap.Error(err))
		}
	}
	cancel()
	wg.Wait()
	pool.Wait()
	return runErr
}

// resume restores the saved slot, or starts a fresh game when there is none
// or the save is unusable.
func resume(ctx context.Context, sess *session.Session, log *zap.Logger) {
	err := sess.Load(ctx)
	switch {
	case err == nil:
		log.Info("save restored")
		return
	case errors.Is(err, session.ErrNoSave):
	default:
		log.Warn("save restore incomplete", zap.Error(err))
		if v := sess.View(); len(v.People) > 0 || v.Over {
			return
		}
	}
	_ = sess.Do(ctx, func(g *game.Game) error {
		g.Start(time.Now())
		return nil
	})
}

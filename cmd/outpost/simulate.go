package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	contentstatic "outpost/internal/adapter/content/static"
	metricsinmem "outpost/internal/adapter/metrics/inmemory"
	"outpost/internal/adapter/names"
	"outpost/internal/adapter/repo/memory"
	"outpost/internal/app/game"
	"outpost/internal/app/session"
)

type simulateOptions struct {
	hours int
	auto  bool
}

func newSimulateCommand(opts *rootOptions) *cobra.Command {
	so := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless game on a fake clock and print a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if so.hours <= 0 {
				return fmt.Errorf("--hours must be positive")
			}
			return simulate(cmd.Context(), opts, so, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&so.hours, "hours", 72, "simulated hours to run")
	cmd.Flags().BoolVar(&so.auto, "auto", true, "keep idle people busy with the first available action")
	return cmd
}

func simulate(ctx context.Context, opts *rootOptions, so *simulateOptions, out io.Writer) error {
	cfg, log := opts.cfg, opts.log
	cat, err := loadCatalog(ctx, contentstatic.Provider{Root: cfg.Content.Dir})
	if err != nil {
		return err
	}

	now := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	pool := names.NewPool(nil, names.PoolConfig{Logger: log})
	g := newGame(cat, cfg, log, pool, clock)
	sess := session.New(g, session.Deps{Journal: memory.NewJournal()}, session.Config{Now: clock, Logger: log})
	kpi := metricsinmem.NewRecorder()
	sess.Listen(kpi.ObserveEvent)

	_ = sess.Do(ctx, func(g *game.Game) error {
		g.Start(now)
		return nil
	})

	gather := cat.Settings().GatherAction
	for h := 0; h < so.hours; h++ {
		if so.auto {
			_ = sess.Do(ctx, func(g *game.Game) error {
				autopilot(g, gather)
				return nil
			})
		}
		now = now.Add(cfg.Game.HourDuration)
		sess.Tick(ctx)
		if sess.View().Over {
			break
		}
	}

	v := sess.View()
	snap := kpi.Snapshot()
	fmt.Fprintf(out, "hours: %d (day %d)\n", v.Hours, v.Day)
	fmt.Fprintf(out, "people: %d\n", len(v.People))
	fmt.Fprintf(out, "buildings: %v\n", v.Buildings)
	outcome := "running"
	switch {
	case v.Won:
		outcome = "won"
	case v.Over:
		outcome = "lost"
	}
	fmt.Fprintf(out, "outcome: %s\n", outcome)
	for _, r := range v.Resources {
		fmt.Fprintf(out, "  %-10s %8.1f\n", r.ID, r.Count)
	}
	topics := make([]string, 0, len(snap.ByTopic))
	for t := range snap.ByTopic {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	for _, t := range topics {
		fmt.Fprintf(out, "  event %-14s %d\n", t, snap.ByTopic[t])
	}
	return nil
}

// autopilot clicks for every idle person: the gather action when it is
// available, otherwise the first unlocked action or option.
func autopilot(g *game.Game, gather string) {
	for _, p := range g.View().People {
		if p.BusyWith != "" {
			continue
		}
		if _, err := g.Click(p.ID, gather, ""); err == nil {
			continue
		}
		for _, a := range p.Actions {
			if a.Locked || a.ID == gather {
				continue
			}
			option := ""
			for _, o := range a.Options {
				if !o.Locked {
					option = o.ID
					break
				}
			}
			if len(a.Options) > 0 && option == "" {
				continue
			}
			if _, err := g.Click(p.ID, a.ID, option); err == nil {
				break
			}
		}
	}
}

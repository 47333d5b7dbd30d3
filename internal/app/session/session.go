package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"outpost/internal/app/game"
	"outpost/internal/app/ports"
	"outpost/internal/domain/bus"
)

var ErrNoSave = errors.New("no saved game")

// journaled lists the topics written to the journal. The rest only reach listeners.
var journaled = map[bus.Topic]bool{
	bus.TopicClick:         true,
	bus.TopicActionEnd:     true,
	bus.TopicBuild:         true,
	bus.TopicArrival:       true,
	bus.TopicLoseSomeone:   true,
	bus.TopicLose:          true,
	bus.TopicWin:           true,
	bus.TopicIncidentStart: true,
	bus.TopicIncidentEnd:   true,
	bus.TopicDecision:      true,
	bus.TopicRunsOut:       true,
	bus.TopicPerk:          true,
	bus.TopicNotice:        true,
}

type Config struct {
	Slot         string
	TickInterval time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

type Deps struct {
	Store     ports.SaveStore
	Codec     ports.SaveCodec
	TxManager ports.TxManager
	Journal   ports.Journal
}

// Session serializes every access to one Game and moves its side effects
// (journal rows, saves, listener pushes) out of the simulation thread.
type Session struct {
	mu        sync.Mutex
	game      *game.Game
	deps      Deps
	cfg       Config
	log       *zap.Logger
	seq       int64
	pending   []ports.Event
	listeners []func(ports.Event)
	lmu       sync.RWMutex

	// fmu orders flushes. It is taken before mu is released so side effects
	// leave in the same order the game produced them.
	fmu sync.Mutex
	// gen numbers encoded snapshots under mu; stored is the newest written, under fmu.
	gen    uint64
	stored uint64
}

func New(g *game.Game, deps Deps, cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Slot == "" {
		cfg.Slot = "default"
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	s := &Session{game: g, deps: deps, cfg: cfg, log: cfg.Logger}
	g.Bus().SubscribeAll(s.record)
	return s
}

// Listen registers fn for every bus message. fn runs outside the game lock
// and must not call back into the session.
func (s *Session) Listen(fn func(ports.Event)) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) record(t bus.Topic, payload any) {
	s.seq++
	body := flatten(payload)
	personID, _ := body["personId"].(string)
	if t == bus.TopicArrival {
		personID, _ = payload.(string)
	}
	s.pending = append(s.pending, ports.Event{
		Seq:        s.seq,
		Topic:      string(t),
		OccurredAt: s.cfg.Now(),
		PersonID:   personID,
		Payload:    body,
	})
}

// Do runs fn with exclusive access to the game, then flushes what it produced.
func (s *Session) Do(ctx context.Context, fn func(g *game.Game) error) error {
	s.mu.Lock()
	err := fn(s.game)
	events := s.drain()
	var (
		blob []byte
		gen  uint64
	)
	if s.game.TakeDirty() {
		blob, gen = s.encode()
	}
	s.fmu.Lock()
	s.mu.Unlock()
	defer s.fmu.Unlock()

	s.flush(ctx, events, blob, gen)
	return err
}

// Tick advances the game to now.
func (s *Session) Tick(ctx context.Context) game.TickResult {
	var res game.TickResult
	_ = s.Do(ctx, func(g *game.Game) error {
		res = g.Tick(s.cfg.Now())
		return nil
	})
	return res
}

// Run ticks until ctx is done, then saves once more.
func (s *Session) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := s.Save(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("final save failed", zap.Error(err))
			}
			return ctx.Err()
		case <-t.C:
			s.Tick(ctx)
		}
	}
}

func (s *Session) View() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View()
}

// Save writes the current state regardless of the dirty flag.
func (s *Session) Save(ctx context.Context) error {
	if s.deps.Store == nil || s.deps.Codec == nil {
		return nil
	}
	s.mu.Lock()
	s.game.TakeDirty()
	blob, err := s.deps.Codec.Encode(s.game.Snapshot())
	s.gen++
	gen := s.gen
	s.fmu.Lock()
	s.mu.Unlock()
	defer s.fmu.Unlock()
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	return s.store(ctx, blob, gen)
}

// Load replaces the live state with the saved slot. A partially broken save
// still loads what it can and the error is returned for logging.
func (s *Session) Load(ctx context.Context) error {
	if s.deps.Store == nil || s.deps.Codec == nil {
		return ErrNoSave
	}
	var blob []byte
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		blob, err = s.deps.Store.Load(ctx, s.cfg.Slot)
		return err
	})
	if errors.Is(err, ports.ErrNotFound) {
		return ErrNoSave
	}
	if err != nil {
		return fmt.Errorf("load slot %q: %w", s.cfg.Slot, err)
	}
	var st game.SaveState
	if err := s.deps.Codec.Decode(blob, &st); err != nil {
		return fmt.Errorf("decode slot %q: %w", s.cfg.Slot, err)
	}
	return s.Do(ctx, func(g *game.Game) error {
		return g.Restore(st, s.cfg.Now())
	})
}

func (s *Session) drain() []ports.Event {
	out := s.pending
	s.pending = nil
	return out
}

func (s *Session) encode() ([]byte, uint64) {
	if s.deps.Codec == nil {
		return nil, 0
	}
	blob, err := s.deps.Codec.Encode(s.game.Snapshot())
	if err != nil {
		s.log.Warn("encode save failed", zap.Error(err))
		return nil, 0
	}
	s.gen++
	return blob, s.gen
}

// store writes blob unless a newer snapshot already made it. Callers hold fmu.
func (s *Session) store(ctx context.Context, blob []byte, gen uint64) error {
	if s.deps.Store == nil || gen <= s.stored {
		return nil
	}
	err := s.inTx(ctx, func(ctx context.Context) error {
		return s.deps.Store.Save(ctx, s.cfg.Slot, blob, s.cfg.Now())
	})
	if err == nil {
		s.stored = gen
	}
	return err
}

func (s *Session) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.deps.TxManager != nil {
		return s.deps.TxManager.RunInTx(ctx, fn)
	}
	return fn(ctx)
}

// flush never fails: persistence errors are logged and the game goes on.
func (s *Session) flush(ctx context.Context, events []ports.Event, blob []byte, gen uint64) {
	if blob != nil {
		if err := s.store(ctx, blob, gen); err != nil {
			s.log.Warn("save failed", zap.String("slot", s.cfg.Slot), zap.Error(err))
		}
	}
	if len(events) == 0 {
		return
	}
	if s.deps.Journal != nil {
		rows := make([]ports.Event, 0, len(events))
		for _, e := range events {
			if journaled[bus.Topic(e.Topic)] {
				rows = append(rows, e)
			}
		}
		if len(rows) > 0 {
			if err := s.deps.Journal.Append(ctx, rows); err != nil {
				s.log.Warn("journal append failed", zap.Int("events", len(rows)), zap.Error(err))
			}
		}
	}
	s.lmu.RLock()
	listeners := append([]func(ports.Event){}, s.listeners...)
	s.lmu.RUnlock()
	for _, e := range events {
		for _, fn := range listeners {
			fn(e)
		}
	}
}

func flatten(payload any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		var v any
		_ = json.Unmarshal(raw, &v)
		return map[string]any{"value": v}
	}
	return out
}

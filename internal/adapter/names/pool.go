package names

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

var fallback = []ports.Name{
	{Name: "Ada", Gender: survival.GenderFemale},
	{Name: "Bram", Gender: survival.GenderMale},
	{Name: "Cass", Gender: survival.GenderOther},
	{Name: "Dina", Gender: survival.GenderFemale},
	{Name: "Emil", Gender: survival.GenderMale},
	{Name: "Faye", Gender: survival.GenderFemale},
	{Name: "Gus", Gender: survival.GenderMale},
	{Name: "Hollis", Gender: survival.GenderOther},
	{Name: "Ines", Gender: survival.GenderFemale},
	{Name: "Jory", Gender: survival.GenderMale},
}

// Pool hands out names without blocking. It keeps a small buffer filled
// from a provider in the background and falls back to a built-in list.
type Pool struct {
	provider ports.NameProvider
	log      *zap.Logger
	low      int
	batch    int
	timeout  time.Duration

	mu       sync.Mutex
	buf      []ports.Name
	next     int
	round    int
	fetching bool
	wg       sync.WaitGroup
}

type PoolConfig struct {
	Low     int
	Batch   int
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewPool accepts a nil provider, in which case only the built-in list is used.
func NewPool(provider ports.NameProvider, cfg PoolConfig) *Pool {
	if cfg.Low <= 0 {
		cfg.Low = 2
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{provider: provider, log: cfg.Logger, low: cfg.Low, batch: cfg.Batch, timeout: cfg.Timeout}
}

func (p *Pool) Next() (string, survival.Gender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n ports.Name
	if len(p.buf) > 0 {
		n, p.buf = p.buf[0], p.buf[1:]
	} else {
		n = p.fallbackLocked()
	}
	if len(p.buf) < p.low {
		p.refillLocked()
	}
	return n.Name, n.Gender
}

// Prefetch fills the buffer synchronously, for use at startup.
func (p *Pool) Prefetch(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	got, err := p.provider.Fetch(ctx, p.batch)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.buf = append(p.buf, got...)
	p.mu.Unlock()
	return nil
}

// Wait blocks until background fetches finish.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) fallbackLocked() ports.Name {
	n := fallback[p.next]
	if p.round > 0 {
		n.Name = fmt.Sprintf("%s %d", n.Name, p.round+1)
	}
	p.next++
	if p.next == len(fallback) {
		p.next = 0
		p.round++
	}
	return n
}

func (p *Pool) refillLocked() {
	if p.provider == nil || p.fetching {
		return
	}
	p.fetching = true
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		got, err := p.provider.Fetch(ctx, p.batch)
		p.mu.Lock()
		defer p.mu.Unlock()
		p.fetching = false
		if err != nil {
			p.log.Warn("name fetch failed", zap.Error(err))
			return
		}
		p.buf = append(p.buf, got...)
	}()
}

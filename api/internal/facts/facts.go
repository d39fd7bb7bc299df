// Package facts holds the trivia shown while a description is being generated.
package facts

import (
	"context"
	"sync"
	"time"
)

type HistoryFact struct {
	ID   int    `json:"id"`
	Fact string `json:"fact"`
}

var Pool = []HistoryFact{
	{ID: 1, Fact: "The Rosetta Stone carries the same decree in hieroglyphic, Demotic and Ancient Greek scripts."},
	{ID: 2, Fact: "The Terracotta Army contains more than 8,000 soldiers, and no two faces are exactly alike."},
	{ID: 3, Fact: "The Antikythera mechanism, built around 100 BC, is often called the first analogue computer."},
	{ID: 4, Fact: "The Bayeux Tapestry is actually an embroidery, nearly 70 metres long."},
	{ID: 5, Fact: "Tutankhamun's tomb held over 5,000 objects when Howard Carter opened it in 1922."},
	{ID: 6, Fact: "The Dead Sea Scrolls were found by a Bedouin shepherd searching for a lost goat."},
	{ID: 7, Fact: "The Venus of Willendorf is roughly 25,000 years old and fits in the palm of a hand."},
	{ID: 8, Fact: "The Code of Hammurabi was carved on a basalt stele over 2 metres tall."},
}

const DefaultInterval = 4 * time.Second

// Cycler rotates through a fact pool on a fixed timer.
type Cycler struct {
	pool     []HistoryFact
	interval time.Duration

	mu     sync.RWMutex
	idx    int
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCycler(pool []HistoryFact, interval time.Duration) *Cycler {
	if len(pool) == 0 {
		pool = Pool
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Cycler{pool: pool, interval: interval}
}

// Start launches the ticker goroutine. Calling Start on a running cycler is a no-op.
func (c *Cycler) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

func (c *Cycler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Advance()
		}
	}
}

// Stop tears down the ticker and waits for it to exit. Safe to call repeatedly.
func (c *Cycler) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Cycler) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cancel != nil
}

func (c *Cycler) Advance() {
	c.mu.Lock()
	c.idx = (c.idx + 1) % len(c.pool)
	c.mu.Unlock()
}

func (c *Cycler) Current() HistoryFact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool[c.idx]
}

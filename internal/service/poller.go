package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Ticker is the unit of work the poller drives once per cycle.
type Ticker interface {
	Tick(ctx context.Context)
}

// Poller drives the forwarding cycle on a fixed delay. The delay is measured
// from the end of one cycle to the start of the next, so a slow cycle never
// stacks up behind itself.
type Poller struct {
	ticker   Ticker
	interval time.Duration
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller running ticker every interval.
func NewPoller(ticker Ticker, interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{
		ticker:   ticker,
		interval: interval,
		log:      log.With().Str("component", "poller").Logger(),
	}
}

// Start starts the poll loop.
func (p *Poller) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.loop()

	p.log.Info().Dur("interval", p.interval).Msg("poller started")
}

// Stop stops the poll loop and waits for the in-flight cycle to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info().Msg("poller stopped")
}

func (p *Poller) loop() {
	defer p.wg.Done()

	for {
		p.ticker.Tick(p.ctx)

		select {
		case <-p.ctx.Done():
			return
		case <-time.After(p.interval):
		}
	}
}

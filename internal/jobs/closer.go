package jobs

import (
	"context"
	"time"

	"prizedraw/internal/giveaway"
	"prizedraw/internal/logger"
)

// Closer periodically sweeps active giveaways past their end time (or sold
// out) and closes them so they become eligible for a winner draw.
type Closer struct {
	svc      giveaway.Service
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewCloser(svc giveaway.Service, interval time.Duration) *Closer {
	return &Closer{
		svc:      svc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately.
func (c *Closer) Start() {
	go c.run()
}

func (c *Closer) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Closer) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closed, err := c.svc.CloseExpired(ctx)
	if err != nil {
		logger.WithError(err).Error("giveaway sweep failed")
		return
	}
	if closed > 0 {
		logger.Infof("closed %d expired giveaways", closed)
	}
}

// Stop signals the loop to exit and waits for the current sweep to finish.
func (c *Closer) Stop() {
	close(c.stop)
	<-c.done
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const DebugMessage = "Testing rooms"

var ErrInvalidInterval = errors.New("debug interval must be positive")

// Scheduler periodically broadcasts DebugMessage to every room.
type Scheduler struct {
	service   *BroadcastService
	interval  time.Duration
	ticker    *time.Ticker
	stopChan  chan struct{}
	doneChan  chan struct{}
	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(service *BroadcastService, interval time.Duration) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
	}
}

func (sch *Scheduler) Start() error {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	if sch.isRunning {
		log.Info("Debug broadcaster is already running.")
		return nil
	}
	if sch.interval <= 0 {
		return ErrInvalidInterval
	}
	sch.ticker = time.NewTicker(sch.interval)
	sch.stopChan = make(chan struct{})
	sch.doneChan = make(chan struct{})
	sch.isRunning = true

	ticker, stop, done := sch.ticker, sch.stopChan, sch.doneChan
	go func() {
		defer close(done)
		log.WithField("interval", sch.interval).Info("Debug broadcaster started.")
		for {
			select {
			case <-stop:
				ticker.Stop()
				log.Info("Debug broadcaster stopped.")
				return
			case <-ticker.C:
				if _, err := sch.service.Broadcast(context.Background(), DebugMessage); err != nil {
					log.WithError(err).Error("Error sending debug broadcast")
				}
			}
		}
	}()
	return nil
}

// Stop halts the broadcaster and waits for its goroutine to exit.
func (sch *Scheduler) Stop() error {
	sch.mu.Lock()
	if !sch.isRunning {
		sch.mu.Unlock()
		log.Info("Debug broadcaster is not running.")
		return nil
	}
	close(sch.stopChan)
	sch.isRunning = false
	done := sch.doneChan
	sch.mu.Unlock()

	<-done
	return nil
}

func (sch *Scheduler) IsRunning() bool {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	return sch.isRunning
}

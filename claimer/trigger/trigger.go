package trigger

import (
	"context"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/hashicorp/go-hclog"
)

// TriggerImpl drives the claim processor. It wakes on every repository change
// and on a periodic tick; the tick re-derives work from storage so claims
// survive missed signals and abandoned leases.
//
// Confirming or failing a claim is itself a repository change, so a drained
// backlog keeps re-signaling until the queue is empty.
type TriggerImpl struct {
	queue     *ConsumerQueue[struct{}]
	processor core.ClaimProcessor
	tickTime  time.Duration
	logger    hclog.Logger
}

func NewTrigger(
	processor core.ClaimProcessor, repository core.ClaimRepository,
	config core.TriggerConfig, logger hclog.Logger,
) *TriggerImpl {
	t := &TriggerImpl{
		queue:     NewConsumerQueue[struct{}](),
		processor: processor,
		tickTime:  config.TickTime,
		logger:    logger,
	}

	repository.OnChange(t.Notify)

	return t
}

// Notify schedules one processing pass. Safe to call from any goroutine.
func (t *TriggerImpl) Notify() {
	t.queue.Add(struct{}{})
}

// Start blocks until ctx is done. Pending signals are coalesced: one pass per
// backlog drain.
func (t *TriggerImpl) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.tickTime)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.queue.Stop()

				return
			case <-ticker.C:
				t.Notify()
			}
		}
	}()

	t.logger.Debug("trigger started", "tickTime", t.tickTime)

	for {
		items := t.queue.WaitForItems()
		if items == nil {
			t.logger.Debug("trigger stopped")

			return
		}

		if err := t.processor.Process(ctx); err != nil {
			if common.IsContextDoneErr(err) {
				return
			}

			t.logger.Error("processing pass failed", "err", err)
		}
	}
}

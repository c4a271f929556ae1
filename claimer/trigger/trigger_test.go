package trigger

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConsumerQueue(t *testing.T) {
	t.Parallel()

	t.Run("drains whole backlog at once", func(t *testing.T) {
		q := NewConsumerQueue[int]()

		q.Add(1)
		q.Add(2)
		q.Add(3)

		require.Equal(t, []int{1, 2, 3}, q.WaitForItems())
	})

	t.Run("stop releases waiting consumer", func(t *testing.T) {
		q := NewConsumerQueue[int]()
		done := make(chan []int, 1)

		go func() {
			done <- q.WaitForItems()
		}()

		time.Sleep(time.Millisecond * 50)
		q.Stop()

		select {
		case items := <-done:
			require.Nil(t, items)
		case <-time.After(time.Second):
			t.Fatal("consumer not released")
		}
	})
}

func TestTrigger(t *testing.T) {
	t.Parallel()

	t.Run("change notification drives a processing pass", func(t *testing.T) {
		repoMock := &core.ClaimRepositoryMock{}
		repoMock.On("OnChange").Return()

		passes := uint64(0)
		processorMock := &core.ClaimProcessorMock{}
		processorMock.On("Process", mock.Anything).Run(func(_ mock.Arguments) {
			atomic.AddUint64(&passes, 1)
		}).Return(error(nil))

		trig := NewTrigger(processorMock, repoMock,
			core.TriggerConfig{TickTime: time.Hour}, hclog.NewNullLogger())

		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})

		go func() {
			trig.Start(ctx)
			close(finished)
		}()

		trig.Notify()
		trig.Notify()

		require.Eventually(t, func() bool {
			return atomic.LoadUint64(&passes) >= 1
		}, time.Second*2, time.Millisecond*10)

		cancel()

		select {
		case <-finished:
		case <-time.After(time.Second * 2):
			t.Fatal("trigger did not stop")
		}
	})

	t.Run("tick re-derives work without notifications", func(t *testing.T) {
		repoMock := &core.ClaimRepositoryMock{}
		repoMock.On("OnChange").Return()

		passes := uint64(0)
		processorMock := &core.ClaimProcessorMock{}
		processorMock.On("Process", mock.Anything).Run(func(_ mock.Arguments) {
			atomic.AddUint64(&passes, 1)
		}).Return(error(nil))

		trig := NewTrigger(processorMock, repoMock,
			core.TriggerConfig{TickTime: time.Millisecond * 20}, hclog.NewNullLogger())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go trig.Start(ctx)

		require.Eventually(t, func() bool {
			return atomic.LoadUint64(&passes) >= 3
		}, time.Second*2, time.Millisecond*10)
	})

	t.Run("processing error does not stop the loop", func(t *testing.T) {
		repoMock := &core.ClaimRepositoryMock{}
		repoMock.On("OnChange").Return()

		passes := uint64(0)
		processorMock := &core.ClaimProcessorMock{}
		processorMock.On("Process", mock.Anything).Run(func(_ mock.Arguments) {
			atomic.AddUint64(&passes, 1)
		}).Return(assert.AnError)

		trig := NewTrigger(processorMock, repoMock,
			core.TriggerConfig{TickTime: time.Millisecond * 20}, hclog.NewNullLogger())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go trig.Start(ctx)

		require.Eventually(t, func() bool {
			return atomic.LoadUint64(&passes) >= 2
		}, time.Second*2, time.Millisecond*10)
	})
}

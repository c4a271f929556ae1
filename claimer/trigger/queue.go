package trigger

import (
	"sync"
)

// ConsumerQueue is a signal queue consumed by a single goroutine. Producers
// append under the condition lock; the consumer drains the whole backlog in
// one WaitForItems call.
type ConsumerQueue[T any] struct {
	lock    *sync.Cond
	data    []T
	stopped bool
}

func NewConsumerQueue[T any]() *ConsumerQueue[T] {
	return &ConsumerQueue[T]{
		lock: sync.NewCond(&sync.Mutex{}),
		data: []T{},
	}
}

func (cq *ConsumerQueue[T]) Add(item T) {
	cq.lock.L.Lock()
	cq.data = append(cq.data, item)
	cq.lock.Signal()
	cq.lock.L.Unlock()
}

// WaitForItems blocks until at least one item is queued or Stop is called.
// Returns nil after Stop.
func (cq *ConsumerQueue[T]) WaitForItems() (result []T) {
	cq.lock.L.Lock()

	for len(cq.data) == 0 && !cq.stopped {
		cq.lock.Wait()
	}

	defer cq.lock.L.Unlock()

	if cq.stopped {
		return nil
	}

	result = append([]T{}, cq.data...)
	cq.data = cq.data[:0]

	return result
}

func (cq *ConsumerQueue[T]) Stop() {
	cq.lock.L.Lock()
	cq.stopped = true
	cq.lock.Broadcast()
	cq.lock.L.Unlock()
}

package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/pkg/model"
)

// Deliverer hands one event to its target. Fire-and-forget: the dispatcher
// never looks at the outcome and nothing upstream is rolled back on failure.
type Deliverer interface {
	Deliver(target string, ev *model.OrderEvent)
}

// Dispatcher turns changed order records into outbound events and pushes
// them through a buffered channel to worker goroutines, so delivery never
// runs inside a matching pass. Orders without a registered target are
// skipped.
type Dispatcher struct {
	deliverer Deliverer
	ch        chan *model.OrderEvent
	wg        sync.WaitGroup
	log       *zap.SugaredLogger

	closeOnce sync.Once
}

func NewDispatcher(deliverer Deliverer, buffer, workers int) *Dispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	if workers <= 0 {
		workers = 4
	}

	d := &Dispatcher{
		deliverer: deliverer,
		ch:        make(chan *model.OrderEvent, buffer),
		log:       zap.S(),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// OrderChanged translates the record and enqueues the event. Never blocks:
// when the queue is full the event is dropped and logged, per the
// fire-and-forget contract.
func (d *Dispatcher) OrderChanged(order model.Order) {
	if order.WebhookURL == "" {
		return
	}
	ev := model.NewOrderEvent(order, time.Now())
	select {
	case d.ch <- ev:
	default:
		d.log.Warnw("notification queue full, dropping event",
			"order_id", ev.OrderID, "status", ev.Status)
	}
}

// Close stops intake and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.ch) })
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.ch {
		d.deliverer.Deliver(ev.Target, ev)
	}
}

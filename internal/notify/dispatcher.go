package notify

import (
	"context"
	"sync"
	"time"

	"marketplace/internal/metrics"

	"go.uber.org/zap"
)

const mailTimeout = 30 * time.Second

// Dispatcher はpushを同期で、メールをワーカーで非同期に送る。
// どちらの失敗もログとメトリクスに残すだけで返さない。
type Dispatcher struct {
	pub     Publisher
	mailer  Mailer
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	closed bool
	queue  chan Mail
	wg     sync.WaitGroup
}

func NewDispatcher(pub Publisher, mailer Mailer, logger *zap.Logger, m *metrics.Metrics, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		pub:     pub,
		mailer:  mailer,
		logger:  logger,
		metrics: m,
		queue:   make(chan Mail, 100),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.mailWorker()
	}
	return d
}

func (d *Dispatcher) Publish(ctx context.Context, ev Event) {
	if d.pub == nil {
		return
	}
	if err := d.pub.Publish(ctx, ev); err != nil {
		d.logger.Warn("push failed", zap.String("event", ev.Type), zap.Error(err))
		d.metrics.NotificationFailed("push")
	}
}

// 宛先なし・メール無効のときは何もしない
func (d *Dispatcher) Mail(_ context.Context, m Mail) {
	if d.mailer == nil || m.To == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- m:
	default:
		d.logger.Warn("mail queue full, dropped", zap.String("subject", m.Subject))
		d.metrics.NotificationFailed("email")
	}
}

func (d *Dispatcher) mailWorker() {
	defer d.wg.Done()
	for m := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		if err := d.mailer.Send(ctx, m); err != nil {
			d.logger.Warn("mail failed", zap.String("to", m.To), zap.String("subject", m.Subject), zap.Error(err))
			d.metrics.NotificationFailed("email")
		}
		cancel()
	}
}

// Close はキューに残ったメールを送り切ってから戻る。
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

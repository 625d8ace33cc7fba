package notify

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultSendTimeout = 15 * time.Second
)

// Deduper guards against mailing the same code twice.
type Deduper interface {
	Claim(ctx context.Context, email, kind, code string) (bool, error)
	Release(ctx context.Context, email, kind, code string) error
}

// Config tunes the dispatcher worker pool.
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher delivers notifications on a fixed set of workers. Notifications
// are sharded by recipient so mails to one address go out in dispatch order.
// Workers use their own contexts; nothing here is tied to the request that
// produced the notification.
type Dispatcher struct {
	workers     []chan ports.Notification
	mailer      ports.Mailer
	renderer    *Renderer
	dedup       Deduper
	sendTimeout time.Duration
	log         zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. dedup may be nil.
func NewDispatcher(cfg Config, mailer ports.Mailer, renderer *Renderer, dedup Deduper, log zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	d := &Dispatcher{
		workers:     make([]chan ports.Notification, cfg.Workers),
		mailer:      mailer,
		renderer:    renderer,
		dedup:       dedup,
		sendTimeout: cfg.SendTimeout,
		log:         log.With().Str("component", "notifier").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, cfg.QueueSize)
	}
	return d
}

// Start launches all worker goroutines. They exit once Stop has drained the queues.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Stop refuses new notifications, lets workers finish what is queued and
// waits for them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Dispatch queues n without blocking. A full queue or a stopped dispatcher
// drops the notification and logs it.
func (d *Dispatcher) Dispatch(n ports.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(n, "stopped")
		return
	}

	idx := d.shardIndex(n.To)
	select {
	case d.workers[idx] <- n:
		QueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		d.drop(n, "queue_full")
	}
}

func (d *Dispatcher) drop(n ports.Notification, reason string) {
	NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
	d.log.Error().
		Str("kind", string(n.Kind)).
		Str("to", n.To).
		Str("reason", reason).
		Msg("notification dropped")
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for n := range ch {
		QueueDepth.WithLabelValues(label).Dec()
		d.deliver(id, n)
	}
}

func (d *Dispatcher) deliver(workerID int, n ports.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	log := d.log.With().Str("kind", string(n.Kind)).Str("to", n.To).Int("worker_id", workerID).Logger()

	if d.dedup != nil {
		claimed, err := d.dedup.Claim(ctx, n.To, string(n.Kind), n.Code)
		if err != nil {
			log.Warn().Err(err).Msg("dedup claim failed, sending anyway")
		} else if !claimed {
			NotificationsTotal.WithLabelValues(string(n.Kind), "duplicate").Inc()
			log.Debug().Msg("notification already sent, skipped")
			return
		}
	}

	email, err := d.renderer.Render(n)
	if err != nil {
		NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		log.Error().Err(err).Msg("render notification")
		d.release(ctx, log, n)
		return
	}

	start := time.Now()
	err = d.mailer.Send(ctx, email)
	SendDuration.WithLabelValues(string(n.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		log.Error().Err(err).Msg("notification send failed")
		d.release(ctx, log, n)
		return
	}

	NotificationsTotal.WithLabelValues(string(n.Kind), "sent").Inc()
	log.Info().Msg("notification sent")
}

// release gives up the dedup claim so a later resend of the same code can go out.
func (d *Dispatcher) release(ctx context.Context, log zerolog.Logger, n ports.Notification) {
	if d.dedup == nil {
		return
	}
	if err := d.dedup.Release(ctx, n.To, string(n.Kind), n.Code); err != nil {
		log.Warn().Err(err).Msg("dedup release failed")
	}
}

package syncagent

import (
	"context"
	"sync"
	"time"

	"bizdir_backend/internal/logger"
	"bizdir_backend/internal/services/dto"
)

// QueryAPI is the slice of the read-state service the agent polls.
// services.NotificationService satisfies it.
type QueryAPI interface {
	UnreadCount(ref dto.RecipientRef) (int64, error)
	ListDeliveries(ref dto.RecipientRef) (*dto.DeliveryListResponse, error)
	MarkRead(deliveryID string) error
	MarkAllRead(ref dto.RecipientRef) (int64, error)
}

// Alert is one user-facing notification event handed to the sinks.
type Alert struct {
	DeliveryID string
	Message    string
	CreatedAt  time.Time
}

// Option configures an Agent.
type Option func(*Agent)

func WithInterval(interval time.Duration) Option {
	return func(a *Agent) { a.interval = interval }
}

func WithMaxAlertsPerPoll(max int) Option {
	return func(a *Agent) { a.maxAlertsPerPoll = max }
}

func WithSinks(sinks ...AlertSink) Option {
	return func(a *Agent) { a.sinks = append(a.sinks, sinks...) }
}

// Agent is the per-session sync loop: it polls the query API on a
// fixed interval, diffs the unread count against the previous poll,
// and raises alerts for newly-seen deliveries. All of its comparison
// state is in-memory only; a fresh session never alerts on backlog.
type Agent struct {
	api              QueryAPI
	recipient        dto.RecipientRef
	interval         time.Duration
	maxAlertsPerPoll int
	sinks            []AlertSink

	mu           sync.Mutex
	prevUnread   int64
	polledOnce   bool
	seen         map[string]struct{}
	readOverride map[string]struct{}
	deliveries   []*dto.DeliveryResponse
	unread       int64

	cancel context.CancelFunc
	done   chan struct{}
}

func New(api QueryAPI, recipient dto.RecipientRef, opts ...Option) *Agent {
	agent := &Agent{
		api:              api,
		recipient:        recipient,
		interval:         10 * time.Second,
		maxAlertsPerPoll: 3,
		seen:             make(map[string]struct{}),
		readOverride:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(agent)
	}
	return agent
}

// Start launches the polling loop. It polls once immediately, then on
// every tick until Stop or the parent context ends the session.
func (a *Agent) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func() {
		defer close(a.done)

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		a.Poll()

		for {
			select {
			case <-ctx.Done():
				logger.Debug("sync agent stopped", "recipient_id", a.recipient.ID)
				return
			case <-ticker.C:
				a.Poll()
			}
		}
	}()
}

// Stop ends the session loop and waits for it to release the ticker.
func (a *Agent) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
}

// Poll runs one cycle: UnreadCount first and, only when something
// changed, the full delivery list. A failed poll is dropped silently;
// the next tick retries.
func (a *Agent) Poll() {
	count, err := a.api.UnreadCount(a.recipient)
	if err != nil {
		logger.AgentLog(a.recipient.ID, -1, 0, err)
		return
	}

	a.mu.Lock()

	needList := !a.polledOnce || count != a.prevUnread || len(a.readOverride) > 0

	var list *dto.DeliveryListResponse
	if needList {
		a.mu.Unlock()
		list, err = a.api.ListDeliveries(a.recipient)
		a.mu.Lock()
		if err != nil {
			// Keep bookkeeping consistent even on a failed list fetch.
			a.prevUnread = count
			a.mu.Unlock()
			logger.AgentLog(a.recipient.ID, count, 0, err)
			return
		}
	}

	var alerts []Alert

	if list != nil {
		a.applySnapshotLocked(list)

		// Suppress alerting on the very first poll of a session so a
		// pre-existing backlog never re-alerts.
		firstPoll := !a.polledOnce
		shouldAlert := !firstPoll && count > a.prevUnread

		for _, delivery := range a.deliveries {
			if _, known := a.seen[delivery.ID]; known {
				continue
			}
			a.seen[delivery.ID] = struct{}{}
			if firstPoll || delivery.IsRead || !shouldAlert {
				continue
			}
			if len(alerts) < a.maxAlertsPerPoll {
				alerts = append(alerts, Alert{
					DeliveryID: delivery.ID,
					Message:    delivery.Message,
					CreatedAt:  delivery.CreatedAt,
				})
			}
		}
	}

	a.prevUnread = count
	a.polledOnce = true
	sinks := a.sinks
	a.mu.Unlock()

	// Alerting is a side effect only; sink failures never touch the
	// poll bookkeeping.
	for _, alert := range alerts {
		for _, sink := range sinks {
			if err := sink.Notify(alert); err != nil {
				logger.Warn("alert sink failed",
					"recipient_id", a.recipient.ID,
					"delivery_id", alert.DeliveryID,
					"error", err.Error())
			}
		}
	}

	logger.AgentLog(a.recipient.ID, count, len(alerts), nil)
}

// applySnapshotLocked stores the fetched list with local read
// overrides applied: a delivery marked read in this session stays read
// even when the snapshot predates the mark (last-write-wins on is_read,
// never a downgrade).
func (a *Agent) applySnapshotLocked(list *dto.DeliveryListResponse) {
	var unread int64
	deliveries := make([]*dto.DeliveryResponse, 0, len(list.Deliveries))

	for _, delivery := range list.Deliveries {
		copied := *delivery
		if _, overridden := a.readOverride[copied.ID]; overridden {
			copied.IsRead = true
		}
		if copied.IsRead {
			// Server caught up; the override is no longer needed.
			if delivery.IsRead {
				delete(a.readOverride, copied.ID)
			}
		} else {
			unread++
		}
		deliveries = append(deliveries, &copied)
	}

	a.deliveries = deliveries
	a.unread = unread
}

// Snapshot returns the session's current view: the delivery list with
// optimistic overrides applied and the effective unread count.
func (a *Agent) Snapshot() ([]*dto.DeliveryResponse, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	deliveries := make([]*dto.DeliveryResponse, len(a.deliveries))
	copy(deliveries, a.deliveries)
	return deliveries, a.unread
}

// MarkRead updates local state immediately, then tells the server.
// The override survives even if the server call fails; the read state
// only moves forward.
func (a *Agent) MarkRead(deliveryID string) error {
	a.mu.Lock()
	a.readOverride[deliveryID] = struct{}{}
	for _, delivery := range a.deliveries {
		if delivery.ID == deliveryID && !delivery.IsRead {
			delivery.IsRead = true
			a.unread--
			break
		}
	}
	a.mu.Unlock()

	return a.api.MarkRead(deliveryID)
}

// MarkAllRead optimistically zeroes the local unread view, then
// applies the bulk transition on the server.
func (a *Agent) MarkAllRead() error {
	a.mu.Lock()
	for _, delivery := range a.deliveries {
		if !delivery.IsRead {
			delivery.IsRead = true
			a.readOverride[delivery.ID] = struct{}{}
		}
	}
	a.unread = 0
	a.mu.Unlock()

	_, err := a.api.MarkAllRead(a.recipient)
	return err
}

package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
)

type sessionEventChannel interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

type sessionEventBus interface {
	Publish(subject string, data []byte) error
}

// SessionListener receives session changed events in-process.
type SessionListener func(models.SessionEvent)

// SessionNotifier fans session changed events out to in-process listeners,
// a Redis channel and a NATS subject. Transport failures are logged only.
type SessionNotifier struct {
	mu        sync.RWMutex
	listeners []SessionListener

	redis        sessionEventChannel
	redisChannel string
	bus          sessionEventBus
	subject      string
	metrics      *MetricsService
	logger       *zap.Logger
	now          func() time.Time
}

// SessionNotifierOptions configures the optional transports.
type SessionNotifierOptions struct {
	Redis        sessionEventChannel
	RedisChannel string
	Bus          sessionEventBus
	Subject      string
	Metrics      *MetricsService
}

// NewSessionNotifier constructs a notifier.
func NewSessionNotifier(opts SessionNotifierOptions, logger *zap.Logger) *SessionNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionNotifier{
		redis:        opts.Redis,
		redisChannel: opts.RedisChannel,
		bus:          opts.Bus,
		subject:      opts.Subject,
		metrics:      opts.Metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Subscribe registers an in-process listener.
func (n *SessionNotifier) Subscribe(listener SessionListener) {
	if n == nil || listener == nil {
		return
	}
	n.mu.Lock()
	n.listeners = append(n.listeners, listener)
	n.mu.Unlock()
}

// Notify publishes an event. session is nil for sign-out.
func (n *SessionNotifier) Notify(ctx context.Context, eventType, userID string, session *models.Session) {
	if n == nil {
		return
	}
	event := models.SessionEvent{
		Type:       eventType,
		UserID:     userID,
		Session:    session,
		OccurredAt: n.now().UTC().Format(time.RFC3339),
	}

	n.mu.RLock()
	listeners := make([]SessionListener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()
	for _, listener := range listeners {
		listener(event)
	}

	if n.redis != nil && n.redisChannel != "" {
		if err := n.redis.Publish(ctx, n.redisChannel, event); err != nil {
			n.logger.Warn("failed to publish session event to redis", zap.String("type", eventType), zap.Error(err))
		}
	}
	if n.bus != nil && n.subject != "" {
		payload, err := json.Marshal(event)
		if err == nil {
			err = n.bus.Publish(n.subject, payload)
		}
		if err != nil {
			n.logger.Warn("failed to publish session event to nats", zap.String("type", eventType), zap.Error(err))
		}
	}
	n.metrics.RecordSessionEvent(eventType)
}

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/domain/audit"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/domain/uow"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/platform/kafka"
	"github.com/thuexe/service-rental/internal/proto/events"
)

// EventSource is the CloudEvents source of everything this service publishes.
const EventSource = "service-rental"

// EventPublisher publishes lifecycle events. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Actor identifies who triggered an operation, for authorization and the audit log.
type Actor struct {
	UserID    uuid.UUID
	Role      auth.Role
	IPAddress string
}

// SystemActor is used for scheduled and event-driven work.
var SystemActor = Actor{Role: auth.RoleAdmin, IPAddress: "system"}

func (a Actor) auditID() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

func (a Actor) auditRole() string {
	if a.UserID == uuid.Nil {
		return "system"
	}
	return string(a.Role)
}

// Option configures the services built by NewServices.
type Option func(*core)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// WithPublisher sets the event publisher. Without one, events are dropped.
func WithPublisher(p EventPublisher) Option {
	return func(c *core) { c.publisher = p }
}

// core holds what every service shares: the unit of work, the pricing calculator,
// the event publisher, and the clock.
type core struct {
	uow       uow.UnitOfWork
	calc      *rental.Calculator
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func newCore(u uow.UnitOfWork, calc *rental.Calculator, logger *zap.Logger, opts ...Option) *core {
	c := &core{
		uow:    u,
		calc:   calc,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *core) today() time.Time { return rental.DateOf(c.now()) }

type pendingEvent struct {
	eventType string
	subject   string
	payload   interface{}
}

// txScope is handed to the body of a transactional operation.
type txScope struct {
	repos  uow.Repositories
	actor  Actor
	now    time.Time
	events []pendingEvent
}

func (t *txScope) audit(ctx context.Context, action, description string) error {
	entry := audit.NewEntry(action, description, t.actor.auditID(), t.actor.auditRole(), t.actor.IPAddress, t.now)
	return t.repos.AuditLog().Save(ctx, entry)
}

func (t *txScope) emit(eventType, subject string, payload interface{}) {
	t.events = append(t.events, pendingEvent{eventType: eventType, subject: subject, payload: payload})
}

// run executes fn in one transaction, retrying once when it fails with a
// RetryableError. Events emitted by fn are published only after commit.
func (c *core) run(ctx context.Context, actor Actor, fn func(ctx context.Context, tx *txScope) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		scope := &txScope{actor: actor, now: c.now()}
		err = c.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
			scope.repos = repos
			return fn(ctx, scope)
		})
		if err == nil {
			c.flush(ctx, scope.events)
			return nil
		}
		if !domain.IsRetryable(err) {
			return err
		}
		c.logger.Warn("retrying operation after concurrent update", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return err
}

func (c *core) flush(ctx context.Context, pending []pendingEvent) {
	for _, e := range pending {
		c.publishEvent(ctx, e.eventType, e.subject, e.payload)
	}
}

// publishEvent wraps data in a CloudEvent and publishes it. Failures are logged, never returned.
func (c *core) publishEvent(ctx context.Context, eventType, subject string, data interface{}) {
	if c.publisher == nil {
		return
	}
	ce, err := kafka.NewCloudEvent(EventSource, eventType, data)
	if err != nil {
		c.logger.Error("failed to create cloud event", zap.String("type", eventType), zap.Error(err))
		return
	}
	ce.Subject = subject
	if err := c.publisher.PublishEvent(ctx, events.TopicRentalEvents, ce); err != nil {
		c.logger.Error("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

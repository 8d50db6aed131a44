package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/devcamper/internal/domain"
	pkgkafka "github.com/utafrali/devcamper/pkg/kafka"
	"github.com/utafrali/devcamper/pkg/logger"
)

// Kafka topic constants for devcamper domain events.
const (
	TopicBootcampCreated           = "devcamper.bootcamp.created"
	TopicBootcampUpdated           = "devcamper.bootcamp.updated"
	TopicBootcampDeleted           = "devcamper.bootcamp.deleted"
	TopicBootcampAggregatesUpdated = "devcamper.bootcamp.aggregates_updated"
	TopicCourseCreated             = "devcamper.course.created"
	TopicCourseDeleted             = "devcamper.course.deleted"
	TopicReviewCreated             = "devcamper.review.created"
	TopicReviewDeleted             = "devcamper.review.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeBootcamp = "bootcamp"
	AggregateTypeCourse   = "course"
	AggregateTypeReview   = "review"
)

// SourceDevcamper identifies events originating from this service.
const SourceDevcamper = "devcamper-api"

// BootcampDeletedData is the payload for a bootcamp.deleted event.
type BootcampDeletedData struct {
	ID string `json:"id"`
}

// AggregatesUpdatedData is the payload for a bootcamp.aggregates_updated event.
// Value is null when the field was cleared.
type AggregatesUpdatedData struct {
	BootcampID string   `json:"bootcamp_id"`
	Field      string   `json:"field"`
	Value      *float64 `json:"value"`
}

// ChildDeletedData is the payload for course.deleted and review.deleted events.
type ChildDeletedData struct {
	ID         string `json:"id"`
	BootcampID string `json:"bootcamp_id"`
}

// Publisher writes an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes devcamper domain events. Publishing is best effort:
// failures are logged and never returned to the caller.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer. A nil publisher disables publishing.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishBootcampCreated publishes a bootcamp.created event.
func (p *Producer) PublishBootcampCreated(ctx context.Context, b *domain.Bootcamp) {
	p.publish(ctx, TopicBootcampCreated, b.ID, AggregateTypeBootcamp, b)
}

// PublishBootcampUpdated publishes a bootcamp.updated event.
func (p *Producer) PublishBootcampUpdated(ctx context.Context, b *domain.Bootcamp) {
	p.publish(ctx, TopicBootcampUpdated, b.ID, AggregateTypeBootcamp, b)
}

// PublishBootcampDeleted publishes a bootcamp.deleted event.
func (p *Producer) PublishBootcampDeleted(ctx context.Context, id string) {
	p.publish(ctx, TopicBootcampDeleted, id, AggregateTypeBootcamp, BootcampDeletedData{ID: id})
}

// PublishAggregatesUpdated publishes a bootcamp.aggregates_updated event.
func (p *Producer) PublishAggregatesUpdated(ctx context.Context, bootcampID, field string, value *float64) {
	p.publish(ctx, TopicBootcampAggregatesUpdated, bootcampID, AggregateTypeBootcamp, AggregatesUpdatedData{
		BootcampID: bootcampID,
		Field:      field,
		Value:      value,
	})
}

// PublishCourseCreated publishes a course.created event.
func (p *Producer) PublishCourseCreated(ctx context.Context, c *domain.Course) {
	p.publish(ctx, TopicCourseCreated, c.ID, AggregateTypeCourse, c)
}

// PublishCourseDeleted publishes a course.deleted event.
func (p *Producer) PublishCourseDeleted(ctx context.Context, c *domain.Course) {
	p.publish(ctx, TopicCourseDeleted, c.ID, AggregateTypeCourse, ChildDeletedData{ID: c.ID, BootcampID: c.BootcampID})
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) {
	p.publish(ctx, TopicReviewCreated, r.ID, AggregateTypeReview, r)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, r *domain.Review) {
	p.publish(ctx, TopicReviewDeleted, r.ID, AggregateTypeReview, ChildDeletedData{ID: r.ID, BootcampID: r.BootcampID})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) {
	if p == nil || p.publisher == nil {
		return
	}

	ev, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceDevcamper, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return
	}
	ev.RequestID = logger.RequestIDFromContext(ctx)
	ev.ActorID = logger.UserIDFromContext(ctx)

	if err := p.publisher.Publish(ctx, topic, ev); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("aggregate_id", aggregateID),
			slog.String("error", err.Error()),
		)
	}
}

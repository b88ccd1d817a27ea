package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
	"github.com/jmuralla/taskhive-backend/pkg/outbox"
	"github.com/jmuralla/taskhive-backend/pkg/outbox/payloads"
)

const activityConsumerName = "activity"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type entryWriter interface {
	Insert(ctx context.Context, entry *models.ActivityEntry) error
}

// Consumer projects domain events into activity trail rows while
// honoring Redis idempotency.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	repo         entryWriter
	manager      idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds the activity consumer. The subscription may be nil
// when only Process is exercised directly.
func NewConsumer(subscription *gcppubsub.Subscriber, repo entryWriter, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, errors.New("activity repository is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		subscription: subscription,
		repo:         repo,
		manager:      manager,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes domain events until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return errors.New("activity subscription is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return c.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if c.handleMessage(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) handleMessage(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := c.logg.WithFields(ctx, fields)

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		fields["error"] = err.Error()
		c.logg.Warn(c.logg.WithFields(ctx, fields), "invalid activity envelope")
		return processResult{}
	}

	eventTypeRaw := strings.TrimSpace(msg.Attributes["event_type"])
	eventType, err := enums.ParseOutboxEventType(eventTypeRaw)
	if err != nil {
		fields["event_type"] = eventTypeRaw
		c.logg.Warn(c.logg.WithFields(ctx, fields), "unknown event type")
		return processResult{}
	}

	if c.Process(logCtx, eventType, envelope) != nil {
		return processResult{nack: true}
	}
	return processResult{}
}

// Process turns one envelope into an activity entry. A malformed
// envelope is dropped without error; transient failures are returned so
// the message is redelivered.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if envelope.EventID == "" {
		c.logg.Warn(logCtx, "event id missing")
		return nil
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Warn(logCtx, "event id not a uuid")
		return nil
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, activityConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	entry, err := buildEntry(eventType, eventID, envelope)
	if err != nil {
		// The payload will not become valid on redelivery.
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "unusable event payload")
		return nil
	}

	if err := c.repo.Insert(ctx, entry); err != nil {
		c.logg.Error(logCtx, "failed to insert activity entry", err)
		_ = c.manager.Delete(ctx, activityConsumerName, eventID)
		return fmt.Errorf("insert activity entry: %w", err)
	}

	c.logg.Info(logCtx, "activity entry recorded")
	return nil
}

func buildEntry(eventType enums.OutboxEventType, eventID uuid.UUID, envelope outbox.PayloadEnvelope) (*models.ActivityEntry, error) {
	entry := &models.ActivityEntry{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: envelope.OccurredAt.UTC(),
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	if envelope.Actor != nil {
		entry.ActorID = envelope.Actor.UserID
	}

	switch eventType {
	case enums.OutboxEventTaskCreated:
		var data payloads.TaskCreatedEvent
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode task.created: %w", err)
		}
		entry.AggregateType = enums.OutboxAggregateTask
		entry.AggregateID = data.TaskID
		if entry.ActorID == uuid.Nil {
			entry.ActorID = data.CreatedBy
		}
		switch {
		case data.AssigneeID != nil:
			entry.Summary = fmt.Sprintf("Task %s created and assigned to a member", data.TaskNumber)
		case data.TeamID != nil:
			entry.Summary = fmt.Sprintf("Task %s created and assigned to a team", data.TaskNumber)
		default:
			entry.Summary = fmt.Sprintf("Task %s created", data.TaskNumber)
		}

	case enums.OutboxEventTaskCompleted:
		var data payloads.TaskCompletedEvent
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode task.completed: %w", err)
		}
		entry.AggregateType = enums.OutboxAggregateTask
		entry.AggregateID = data.TaskID
		if entry.ActorID == uuid.Nil {
			entry.ActorID = data.CompletedBy
		}
		entry.Summary = fmt.Sprintf("Task %s completed", data.TaskNumber)

	case enums.OutboxEventTaskOverdue:
		var data payloads.TaskOverdueEvent
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode task.overdue: %w", err)
		}
		entry.AggregateType = enums.OutboxAggregateTask
		entry.AggregateID = data.TaskID
		entry.Summary = fmt.Sprintf("Task %s became overdue", data.TaskNumber)

	case enums.OutboxEventTeamCreated:
		var data payloads.TeamCreatedEvent
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode team.created: %w", err)
		}
		entry.AggregateType = enums.OutboxAggregateTeam
		entry.AggregateID = data.TeamID
		if entry.ActorID == uuid.Nil {
			entry.ActorID = data.HeadID
		}
		entry.Summary = fmt.Sprintf("Team %s (%s) created", data.TeamName, data.TeamCode)

	case enums.OutboxEventUserLoggedIn:
		var data payloads.UserLoggedInEvent
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode user.logged_in: %w", err)
		}
		entry.AggregateType = enums.OutboxAggregateUser
		entry.AggregateID = data.UserID
		if entry.ActorID == uuid.Nil {
			entry.ActorID = data.UserID
		}
		entry.Summary = fmt.Sprintf("%s signed in", data.Username)

	default:
		return nil, fmt.Errorf("unhandled event type %s", eventType)
	}

	if entry.AggregateID == uuid.Nil {
		return nil, errors.New("aggregate id missing from payload")
	}
	return entry, nil
}

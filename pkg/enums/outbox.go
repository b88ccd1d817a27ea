package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateTask OutboxAggregateType = "task"
	OutboxAggregateTeam OutboxAggregateType = "team"
	OutboxAggregateUser OutboxAggregateType = "user"
)

var validOutboxAggregateTypes = map[OutboxAggregateType]struct{}{
	OutboxAggregateTask: {},
	OutboxAggregateTeam: {},
	OutboxAggregateUser: {},
}

func (t OutboxAggregateType) String() string { return string(t) }

func (t OutboxAggregateType) IsValid() bool {
	_, ok := validOutboxAggregateTypes[t]
	return ok
}

func ParseOutboxAggregateType(raw string) (OutboxAggregateType, error) {
	t := OutboxAggregateType(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid outbox aggregate type: %q", raw)
	}
	return t, nil
}

// OutboxEventType is the published domain event name.
type OutboxEventType string

const (
	OutboxEventTaskCreated   OutboxEventType = "task.created"
	OutboxEventTaskCompleted OutboxEventType = "task.completed"
	OutboxEventTaskOverdue   OutboxEventType = "task.overdue"
	OutboxEventTeamCreated   OutboxEventType = "team.created"
	OutboxEventUserLoggedIn  OutboxEventType = "user.logged_in"
)

var validOutboxEventTypes = map[OutboxEventType]struct{}{
	OutboxEventTaskCreated:   {},
	OutboxEventTaskCompleted: {},
	OutboxEventTaskOverdue:   {},
	OutboxEventTeamCreated:   {},
	OutboxEventUserLoggedIn:  {},
}

func (t OutboxEventType) String() string { return string(t) }

func (t OutboxEventType) IsValid() bool {
	_, ok := validOutboxEventTypes[t]
	return ok
}

func ParseOutboxEventType(raw string) (OutboxEventType, error) {
	t := OutboxEventType(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid outbox event type: %q", raw)
	}
	return t, nil
}

// OutboxDLQErrorReason classifies why an event landed in the dead letter
// table.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts_exceeded"
	OutboxDLQReasonMalformed    OutboxDLQErrorReason = "malformed_payload"
	OutboxDLQReasonUnknownEvent OutboxDLQErrorReason = "unknown_event_type"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var validOutboxDLQErrorReasons = map[OutboxDLQErrorReason]struct{}{
	OutboxDLQReasonMaxAttempts:  {},
	OutboxDLQReasonMalformed:    {},
	OutboxDLQReasonUnknownEvent: {},
	OutboxDLQReasonNonRetryable: {},
}

func (r OutboxDLQErrorReason) String() string { return string(r) }

func (r OutboxDLQErrorReason) IsValid() bool {
	_, ok := validOutboxDLQErrorReasons[r]
	return ok
}

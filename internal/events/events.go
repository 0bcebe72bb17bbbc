// Package events publishes domain events and background jobs over AMQP.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finova/internal/models"
	"finova/internal/uuid"
)

// Type names a domain event. It doubles as the AMQP routing key.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionDeleted Type = "transaction.deleted"
	CategoryRenamed    Type = "category.renamed"
	MonthReconciled    Type = "month.reconciled"
	AdviceGenerated    Type = "advice.generated"
)

// Event is a domain event envelope.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent marshals payload into an Event of type t.
func NewEvent(t Type, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC(), Payload: body}, nil
}

// JobKind names a background job.
type JobKind string

const (
	JobWeeklyAdvice   JobKind = "weekly_advice"
	JobReconcileMonth JobKind = "reconcile_month"
)

// Job is a unit of background work consumed by the worker.
type Job struct {
	ID         string       `json:"id"`
	Kind       JobKind      `json:"kind"`
	Owner      models.Owner `json:"owner"`
	Month      string       `json:"month,omitempty"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

// NewJob creates a Job with a fresh id.
func NewJob(kind JobKind, owner models.Owner, month string) Job {
	return Job{ID: uuid.New(), Kind: kind, Owner: owner, Month: month, EnqueuedAt: time.Now().UTC()}
}

// ToJSON converts the job to JSON bytes
func (j Job) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// JobFromJSON decodes a job and checks its kind.
func JobFromJSON(data []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, err
	}
	switch job.Kind {
	case JobWeeklyAdvice, JobReconcileMonth:
		return job, nil
	default:
		return Job{}, fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// JobQueue accepts background jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Nop discards events and jobs. It is used when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Enqueue implements JobQueue.
func (Nop) Enqueue(context.Context, Job) error { return nil }

var (
	_ Publisher = Nop{}
	_ JobQueue  = Nop{}
)

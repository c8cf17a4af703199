// Package notify hands notification jobs to the delivery worker over a
// Redis-backed task queue. Enqueueing is fire-and-forget: failures are
// logged by callers, never surfaced to the user who triggered the job.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Kind identifies the notification template the worker should render
type Kind string

const (
	KindNewMessage         Kind = "new_message"
	KindListingReport      Kind = "listing_report"
	KindReportConfirmation Kind = "report_confirmation"
)

// Job is one notification to deliver to one recipient
type Job struct {
	RecipientID    string            `json:"recipient_user_id"`
	RecipientEmail string            `json:"recipient_email"`
	Kind           Kind              `json:"kind"`
	Context        map[string]string `json:"context,omitempty"`
}

// Dispatcher enqueues notification jobs for asynchronous delivery
type Dispatcher interface {
	Dispatch(ctx context.Context, job *Job) error
	Close() error
}

// AsynqDispatcher implements Dispatcher on github.com/hibiken/asynq
type AsynqDispatcher struct {
	client *asynq.Client
	queue  string
}

// NewAsynqDispatcher creates a dispatcher backed by the given Redis instance
func NewAsynqDispatcher(addr, password string, db int, queue string) *AsynqDispatcher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &AsynqDispatcher{client: client, queue: queue}
}

// Dispatch enqueues the job. The worker consuming the queue is a separate
// process; this call only records the intent.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, job *Job) error {
	if job.Kind == "" {
		return fmt.Errorf("notify: job kind is required")
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("notify: marshal job: %w", err)
	}

	task := asynq.NewTask("notify:"+string(job.Kind), payload)
	_, err = d.client.EnqueueContext(ctx, task,
		asynq.Queue(d.queue),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return fmt.Errorf("notify: enqueue %s: %w", job.Kind, err)
	}
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// NopDispatcher drops every job. Used when Redis is not configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, *Job) error { return nil }
func (NopDispatcher) Close() error                         { return nil }

package tasks

import (
	"encoding/json"

	"seabook/config"
	"seabook/models"

	"github.com/hibiken/asynq"
)

const TypeReconcileBooking = "booking:reconcile"

// NewReconcileTask builds the task for a provider/local state divergence.
// Processed by the back-office worker, which re-reads the provider booking
// and repairs the local record.
func NewReconcileTask(payload models.ReconcilePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileBooking, b)
	opts := []asynq.Option{
		asynq.Queue("reconciliation"),
		asynq.MaxRetry(10),
	}
	return task, opts, nil
}

// Enqueuer pushes tasks onto the shared queue. This service only enqueues;
// workers run elsewhere.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates an Enqueuer against the configured redis instance.
func NewEnqueuer() *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskDB,
		}),
	}
}

// EnqueueReconcile queues a reconciliation task.
func (e *Enqueuer) EnqueueReconcile(payload models.ReconcilePayload) error {
	task, opts, err := NewReconcileTask(payload)
	if err != nil {
		return err
	}
	if _, err := e.client.Enqueue(task, opts...); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying queue connection.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

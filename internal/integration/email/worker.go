package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	"github.com/finance-tracker/platform/internal/integration/email/templates"
)

// DeliveryObserver is told the outcome of every delivery attempt: "sent",
// "retry" or "abandoned".
type DeliveryObserver interface {
	ObserveEmailDelivery(template, outcome string)
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithDeliveryObserver reports delivery outcomes to o.
func WithDeliveryObserver(o DeliveryObserver) WorkerOption {
	return func(w *Worker) { w.observer = o }
}

// Worker polls the queue and delivers due emails.
type Worker struct {
	queue     adapter.EmailQueue
	sender    adapter.EmailSender
	renderer  *templates.Renderer
	clock     adapter.Clock
	interval  time.Duration
	batchSize int
	observer  DeliveryObserver
}

// NewWorker creates a Worker. Non-positive interval and batchSize default to
// five seconds and ten jobs.
func NewWorker(queue adapter.EmailQueue, sender adapter.EmailSender, renderer *templates.Renderer, clock adapter.Clock, interval time.Duration, batchSize int, opts ...WorkerOption) *Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	w := &Worker{
		queue:     queue,
		sender:    sender,
		renderer:  renderer,
		clock:     clock,
		interval:  interval,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run delivers due emails every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("Email worker started", "interval", w.interval, "batch_size", w.batchSize)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Drain(ctx); err != nil {
			slog.Error("Email batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("Email worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Drain makes one delivery attempt for every job due now, up to the batch
// size, and returns how many were sent.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	jobs, err := w.queue.Due(ctx, w.clock.Now(), w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load due emails: %w", err)
	}

	sent := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		if w.deliver(ctx, job) {
			sent++
		}
	}
	return sent, nil
}

func (w *Worker) deliver(ctx context.Context, job *entity.EmailJob) bool {
	log := slog.With("job_id", job.ID, "template", job.Template, "attempt", job.Attempts+1)

	id, err := w.send(ctx, job)
	now := w.clock.Now()
	outcome := "sent"
	if err == nil {
		job.Delivered(id, now)
		log.Info("Email sent", "provider_id", id)
	} else if job.Failed(err, errors.Is(err, ErrPermanent), now) {
		outcome = "retry"
		log.Warn("Email delivery failed, will retry", "error", err, "next_attempt_at", job.NextAttemptAt)
	} else {
		outcome = "abandoned"
		log.Error("Email delivery abandoned", "error", err)
	}
	if w.observer != nil {
		w.observer.ObserveEmailDelivery(string(job.Template), outcome)
	}

	if saveErr := w.queue.Save(ctx, job); saveErr != nil {
		log.Error("Failed to record email delivery state", "error", saveErr)
	}
	return err == nil
}

func (w *Worker) send(ctx context.Context, job *entity.EmailJob) (string, error) {
	if !w.renderer.Has(string(job.Template)) {
		return "", fmt.Errorf("%w: unknown template %q", ErrPermanent, job.Template)
	}
	html, text, err := w.renderer.Render(string(job.Template), job.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	return w.sender.Send(ctx, adapter.OutgoingEmail{
		To:      job.To,
		Name:    job.Name,
		Subject: job.Subject,
		HTML:    html,
		Text:    text,
	})
}

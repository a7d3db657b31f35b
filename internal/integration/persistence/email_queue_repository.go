package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

type emailQueueRepository struct {
	db   *gorm.DB
	jobs *softdelete.Store[model.EmailJobModel]
}

// NewEmailQueueRepository returns the gorm-backed adapter.EmailQueue.
// Cancelling a job soft-deletes it.
func NewEmailQueueRepository(db *gorm.DB, clock adapter.Clock, opts ...softdelete.Option) adapter.EmailQueue {
	return &emailQueueRepository{
		db:   db,
		jobs: softdelete.NewStore[model.EmailJobModel](db, clock, opts...),
	}
}

func pending(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(entity.EmailStatusPending))
}

func (r *emailQueueRepository) Enqueue(ctx context.Context, job *entity.EmailJob) error {
	return r.db.WithContext(ctx).Create(model.EmailJobFromEntity(job)).Error
}

func (r *emailQueueRepository) Due(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error) {
	rows, err := r.jobs.ListActive(ctx, pending,
		softdelete.Where("next_attempt_at <= ?", now),
		func(db *gorm.DB) *gorm.DB { return db.Order("next_attempt_at ASC").Limit(limit) },
	)
	if err != nil {
		return nil, err
	}
	return toJobs(rows), nil
}

// Save writes the delivery state back. A job cancelled since it was read
// stays cancelled.
func (r *emailQueueRepository) Save(ctx context.Context, job *entity.EmailJob) error {
	m := model.EmailJobFromEntity(job)
	return r.jobs.Active(ctx).
		Where("id = ?", m.ID).
		Select("status", "attempts", "last_error", "provider_id", "next_attempt_at", "finished_at").
		Updates(m).Error
}

func (r *emailQueueRepository) CancelPending(ctx context.Context, recipient string) (int64, error) {
	return r.jobs.Delete(ctx, pending, softdelete.Where("recipient = ?", recipient))
}

func (r *emailQueueRepository) ListByRecipient(ctx context.Context, recipient string, includeCancelled bool) ([]*entity.EmailJob, error) {
	read := r.jobs.ListActive
	if includeCancelled {
		read = r.jobs.ListAll
	}
	rows, err := read(ctx,
		softdelete.Where("recipient = ?", recipient),
		func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") },
	)
	if err != nil {
		return nil, err
	}
	return toJobs(rows), nil
}

func toJobs(rows []model.EmailJobModel) []*entity.EmailJob {
	jobs := make([]*entity.EmailJob, len(rows))
	for i := range rows {
		jobs[i] = rows[i].ToEntity()
	}
	return jobs
}

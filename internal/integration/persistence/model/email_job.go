package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/domain/entity"
	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

// EmailJobModel maps email_queue. A cancelled job is soft-deleted.
type EmailJobModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Template      string            `gorm:"type:varchar(50);not null"`
	Recipient     string            `gorm:"type:varchar(255);index;not null"`
	Name          string            `gorm:"type:varchar(255)"`
	Subject       string            `gorm:"type:varchar(500);not null"`
	Data          map[string]string `gorm:"type:text;serializer:json"`
	Status        string            `gorm:"type:varchar(20);index;not null"`
	Attempts      int               `gorm:"not null;default:0"`
	LastError     string            `gorm:"type:text"`
	ProviderID    string            `gorm:"type:varchar(100)"`
	CreatedAt     time.Time         `gorm:"not null"`
	NextAttemptAt time.Time         `gorm:"index;not null"`
	FinishedAt    *time.Time
	softdelete.Model
}

func (EmailJobModel) TableName() string {
	return "email_queue"
}

func (m *EmailJobModel) ToEntity() *entity.EmailJob {
	data := m.Data
	if data == nil {
		data = map[string]string{}
	}
	return &entity.EmailJob{
		ID:            m.ID,
		Template:      entity.EmailTemplate(m.Template),
		To:            m.Recipient,
		Name:          m.Name,
		Subject:       m.Subject,
		Data:          data,
		Status:        entity.EmailStatus(m.Status),
		Attempts:      m.Attempts,
		LastError:     m.LastError,
		ProviderID:    m.ProviderID,
		CreatedAt:     m.CreatedAt,
		NextAttemptAt: m.NextAttemptAt,
		FinishedAt:    m.FinishedAt,
		CancelledAt:   m.DeletedTime(),
	}
}

func EmailJobFromEntity(j *entity.EmailJob) *EmailJobModel {
	return &EmailJobModel{
		ID:            j.ID,
		Template:      string(j.Template),
		Recipient:     j.To,
		Name:          j.Name,
		Subject:       j.Subject,
		Data:          j.Data,
		Status:        string(j.Status),
		Attempts:      j.Attempts,
		LastError:     j.LastError,
		ProviderID:    j.ProviderID,
		CreatedAt:     j.CreatedAt,
		NextAttemptAt: j.NextAttemptAt,
		FinishedAt:    j.FinishedAt,
		Model:         softdelete.At(j.CancelledAt),
	}
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/enrollment"
)

// EnrollmentDraftModel is the persistence model for in-progress enrollment
// drafts. The draft is an opaque per-session document, so the whole thing
// is stored as JSON rather than one column per wizard step.
type EnrollmentDraftModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID string    `gorm:"type:varchar(100);primaryKey"`
	Body      string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EnrollmentDraftModel) TableName() string {
	return "enrollment_drafts"
}

// ToDomain converts the persistence model to a domain Draft
func (m *EnrollmentDraftModel) ToDomain() (*enrollment.Draft, error) {
	var d enrollment.Draft
	if err := json.Unmarshal([]byte(m.Body), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// FromDomain populates the model from a domain Draft
func (m *EnrollmentDraftModel) FromDomain(d *enrollment.Draft) error {
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.TenantID = d.TenantID
	m.SessionID = d.SessionID
	m.Body = string(body)
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt
	return nil
}

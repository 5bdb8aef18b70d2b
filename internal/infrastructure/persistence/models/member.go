package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellarclub/backend/internal/domain/club"
)

// CustomerModel is the persistence model for the local customer mirror.
type CustomerModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_tenant_external,priority:1"`
	ExternalID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_customer_tenant_external,priority:2"`
	Email      string    `gorm:"type:varchar(200);index"`
	FirstName  string    `gorm:"type:varchar(100)"`
	LastName   string    `gorm:"type:varchar(100)"`
	LTVCents   int64     `gorm:"column:ltv_cents;not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "club_customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *club.Customer {
	return &club.Customer{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Email:      m.Email,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		LTVCents:   m.LTVCents,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Customer
func (m *CustomerModel) FromDomain(c *club.Customer) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.ExternalID = c.ExternalID
	m.Email = c.Email
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.LTVCents = c.LTVCents
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// EnrollmentModel is the persistence model for completed enrollments.
type EnrollmentModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID             uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID           uuid.UUID `gorm:"type:uuid;not null;index"`
	TierID               uuid.UUID `gorm:"type:uuid;not null;index"`
	Status               string    `gorm:"type:varchar(20);not null;default:'active'"`
	EnrolledAt           time.Time `gorm:"not null"`
	ExpiresAt            time.Time `gorm:"not null"`
	ExternalMembershipID *string   `gorm:"type:varchar(100);index"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EnrollmentModel) TableName() string {
	return "enrollments"
}

// ToDomain converts the persistence model to a domain Enrollment
func (m *EnrollmentModel) ToDomain() *club.Enrollment {
	return &club.Enrollment{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		CustomerID:           m.CustomerID,
		TierID:               m.TierID,
		Status:               club.EnrollmentStatus(m.Status),
		EnrolledAt:           m.EnrolledAt,
		ExpiresAt:            m.ExpiresAt,
		ExternalMembershipID: m.ExternalMembershipID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Enrollment
func (m *EnrollmentModel) FromDomain(e *club.Enrollment) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.CustomerID = e.CustomerID
	m.TierID = e.TierID
	m.Status = string(e.Status)
	m.EnrolledAt = e.EnrolledAt
	m.ExpiresAt = e.ExpiresAt
	m.ExternalMembershipID = e.ExternalMembershipID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

package club

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Customer is the local mirror of a platform customer, keyed by the
// platform's external id. It exists so enrollments can reference a stable
// local row; the platform remains the system of record for contact data.
type Customer struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	// ExternalID is the platform customer id
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	// LTVCents is the lifetime value snapshot at last sync, minor units
	LTVCents  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer creates a local mirror row for a platform customer
func NewCustomer(tenantID uuid.UUID, externalID, email, firstName, lastName string) *Customer {
	now := time.Now()
	return &Customer{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Email:      email,
		FirstName:  firstName,
		LastName:   lastName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// EnrollmentStatus is the lifecycle state of a membership enrollment
type EnrollmentStatus string

const (
	// EnrollmentActive is a current membership
	EnrollmentActive EnrollmentStatus = "active"
	// EnrollmentExpired passed its expiry without renewal
	EnrollmentExpired EnrollmentStatus = "expired"
	// EnrollmentCancelled was ended early
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// IsValid returns true if the status is a known value
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentActive, EnrollmentExpired, EnrollmentCancelled:
		return true
	default:
		return false
	}
}

// Enrollment is the persisted result of a completed enrollment workflow.
// ExternalMembershipID may be nil when the remote membership call partially
// failed after local commit; such rows need manual reconciliation.
type Enrollment struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	TierID     uuid.UUID
	Status     EnrollmentStatus
	EnrolledAt time.Time
	// ExpiresAt is EnrolledAt plus the tier duration
	ExpiresAt time.Time
	// ExternalMembershipID is the platform membership id
	ExternalMembershipID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewEnrollment creates an active enrollment spanning the tier duration
func NewEnrollment(tenantID, customerID, tierID uuid.UUID, enrolledAt, expiresAt time.Time) *Enrollment {
	now := time.Now()
	return &Enrollment{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: customerID,
		TierID:     tierID,
		Status:     EnrollmentActive,
		EnrolledAt: enrolledAt,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetExternalMembershipID records the platform membership id
func (e *Enrollment) SetExternalMembershipID(id string) {
	e.ExternalMembershipID = &id
	e.UpdatedAt = time.Now()
}

// CustomerRepository provides persistence for local customer mirrors
type CustomerRepository interface {
	// FindByExternalID finds a customer by platform id within a tenant
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Customer, error)
	// FindByID finds a customer within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	// Save creates or updates a customer mirror
	Save(ctx context.Context, c *Customer) error
}

// EnrollmentRepository provides persistence for enrollments
type EnrollmentRepository interface {
	// FindByID finds an enrollment within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Enrollment, error)
	// FindActiveByCustomer returns the customer's active enrollments
	FindActiveByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Enrollment, error)
	// Save creates or updates an enrollment
	Save(ctx context.Context, e *Enrollment) error
}

// TenantDataRepository removes every row belonging to a tenant. It backs
// the app-uninstalled webhook, after which retaining the tenant's data is
// not permitted.
type TenantDataRepository interface {
	// PurgeTenant deletes all tenant-scoped rows in one transaction
	PurgeTenant(ctx context.Context, tenantID uuid.UUID) error
}

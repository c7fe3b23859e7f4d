package services

import (
	"github.com/HSouheill/enrollment_backend/models"
)

// StatusNotifier is told about enrollment state transitions. Implementations must not block.
type StatusNotifier interface {
	EnrollmentVerified(rec *models.EnrollmentRecord)
	EnrollmentPaid(rec *models.EnrollmentRecord)
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) EnrollmentVerified(*models.EnrollmentRecord) {}
func (NoopNotifier) EnrollmentPaid(*models.EnrollmentRecord)     {}

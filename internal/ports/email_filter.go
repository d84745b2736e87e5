package ports

import (
	"context"

	"github.com/mikey/phishing-detector/internal/core"
)

// EmailFilter defines the interface for email filtering
type EmailFilter interface {
	// ProcessEmail scores an email and returns its risk report
	ProcessEmail(ctx context.Context, email *core.Email) (*core.RiskReport, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}

// ReportSender delivers a rendered risk report to reviewers
type ReportSender interface {
	Send(ctx context.Context, to []string, assessmentID string, report *core.RiskReport) error
}

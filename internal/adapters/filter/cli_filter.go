package filter

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/phishing-detector/internal/adapters/report"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ports"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	service  *core.DetectorService
	reports  ports.ReportSender
	reportTo []string
	logger   *zap.Logger
	verbose  bool
	out      io.Writer
}

// NewCliFilter creates a new CLI filter. reports may be nil.
func NewCliFilter(service *core.DetectorService, reports ports.ReportSender, reportTo []string, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service:  service,
		reports:  reports,
		reportTo: reportTo,
		logger:   logger,
		verbose:  verbose,
		out:      os.Stdout,
	}, nil
}

// ProcessEmail scores an email and prints the report
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.RiskReport, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", email.To)
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", preview)
	}

	startTime := time.Now()
	result := f.service.AssessEmail(ctx, email)
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Assessment ===\n")
	if err := report.Render(f.out, result); err != nil {
		return nil, err
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	if f.reports != nil && len(f.reportTo) > 0 {
		id := uuid.NewString()
		if err := f.reports.Send(ctx, f.reportTo, id, result); err != nil {
			f.logger.Error("Failed to send assessment report", zap.Error(err))
			return result, err
		}
		fmt.Fprintf(f.out, "Report %s sent to %v\n", id, f.reportTo)
	}

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}

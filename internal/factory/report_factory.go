package factory

import (
	"github.com/mikey/phishing-detector/internal/adapters/report"
	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/ports"
	"go.uber.org/zap"
)

// ReportFactory creates the report sender
type ReportFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReportFactory creates a new report factory
func NewReportFactory(cfg *config.Config, logger *zap.Logger) *ReportFactory {
	return &ReportFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReportSender returns the SMTP report dispatcher, or nil when reports are disabled
func (f *ReportFactory) CreateReportSender() ports.ReportSender {
	reportCfg := f.cfg.GetReport()
	if !reportCfg.Enabled {
		return nil
	}

	f.logger.Info("Assessment reports enabled",
		zap.String("relay", reportCfg.SMTPAddress),
		zap.Strings("to", reportCfg.To),
		zap.Bool("only_phishing", reportCfg.OnlyPhishing))

	return report.NewSMTPDispatcher(
		reportCfg.SMTPAddress,
		reportCfg.From,
		reportCfg.Username,
		reportCfg.Password,
		f.logger.Named("report"),
	)
}

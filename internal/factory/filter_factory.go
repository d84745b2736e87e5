package factory

import (
	"github.com/mikey/phishing-detector/internal/adapters/filter"
	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ports"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *core.DetectorService
	reporter ports.ReportSender
}

// NewFilterFactory creates a new filter factory. reporter may be nil.
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.DetectorService, reporter ports.ReportSender) *FilterFactory {
	return &FilterFactory{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		reporter: reporter,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	server := f.cfg.GetServer()
	reportCfg := f.cfg.GetReport()

	switch server.FilterType {
	case "postfix":
		return filter.NewPostfixFilter(f.service, f.reporter, f.logger.Named("postfix"), filter.PostfixConfig{
			ListenAddress: server.ListenAddress,
			BlockPhishing: server.BlockPhishing,
			Headers: filter.HeaderNames{
				Status:       server.StatusHeader,
				Score:        server.ScoreHeader,
				Level:        server.LevelHeader,
				Reason:       server.ReasonHeader,
				AssessmentID: server.AssessmentIDHeader,
			},
			PostfixAddress:     server.PostfixAddress,
			PostfixPort:        server.PostfixPort,
			PostfixEnabled:     server.PostfixEnabled,
			SubjectPrefix:      server.SubjectPrefix,
			ModifySubject:      server.ModifySubject,
			Timeout:            server.Timeout,
			ReportTo:           reportCfg.To,
			ReportOnlyPhishing: reportCfg.OnlyPhishing,
		}), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.reporter,
			reportCfg.To,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, eris.Errorf("unsupported filter type: %s", server.FilterType)
	}
}

// Package report renders a RiskReport as text and mails it.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mikey/phishing-detector/internal/core"
)

// Render writes a human-readable summary of report to w
func Render(w io.Writer, report *core.RiskReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Classification: %s\n", report.Classification)
	fmt.Fprintf(&b, "Risk level: %s\n", report.RiskLevel)
	fmt.Fprintf(&b, "Total score: %d (domain %d, URLs %d, keywords %d)\n",
		report.TotalScore, report.DomainScore, report.URLScore, report.KeywordScore)

	b.WriteString("\nSender domain\n")
	fmt.Fprintf(&b, "  %s\n", report.DomainMessage)
	fmt.Fprintf(&b, "  %s\n", report.SimilarityMessage)

	b.WriteString("\nSuspicious keywords\n")
	if len(report.KeywordFindings) == 0 {
		b.WriteString("  none\n")
	}
	for _, finding := range report.KeywordFindings {
		fmt.Fprintf(&b, "  [%s] %s\n", finding.Location, finding.Keyword)
	}

	fmt.Fprintf(&b, "\nLinks (%d URLs, %d domains)\n", report.URLCount, report.UniqueDomainCount)
	if len(report.URLAssessments) == 0 {
		for _, reason := range report.URLReasons {
			fmt.Fprintf(&b, "  %s\n", reason)
		}
	}
	for _, assessment := range report.URLAssessments {
		fmt.Fprintf(&b, "  %s (score %d)\n", assessment.Domain, assessment.Score)
		for _, reason := range assessment.Reasons {
			fmt.Fprintf(&b, "    - %s\n", reason)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

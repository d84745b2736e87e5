package detector

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mikey/phishing-detector/internal/core"
	"golang.org/x/text/unicode/norm"
)

// KeywordConfig holds the keyword scoring knobs
type KeywordConfig struct {
	SubjectWeight   int
	EarlyBodyWeight int
	LateBodyWeight  int
	EarlyBodyWords  int
}

// DefaultKeywordConfig returns the default keyword scoring knobs
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{
		SubjectWeight:   3,
		EarlyBodyWeight: 2,
		LateBodyWeight:  1,
		EarlyBodyWords:  100,
	}
}

// KeywordScorer scores suspicious keywords by where they appear in a message
type KeywordScorer struct {
	keywords []string
	cfg      KeywordConfig
}

// NewKeywordScorer creates a scorer over a fixed keyword list.
// Keywords are expected lowercase; blanks are dropped.
func NewKeywordScorer(keywords []string, cfg KeywordConfig) *KeywordScorer {
	list := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			list = append(list, keyword)
		}
	}
	return &KeywordScorer{keywords: list, cfg: cfg}
}

// Score scans the subject and body. Each keyword yields at most one subject
// finding and at most one body finding; a body hit in the first
// EarlyBodyWords words is not looked for again in the rest of the body.
func (s *KeywordScorer) Score(subject, body string) core.KeywordResult {
	var result core.KeywordResult

	subjectText := strings.Join(strings.Fields(normalizeText(subject)), " ")
	for _, keyword := range s.keywords {
		if containsWord(subjectText, keyword) {
			result.Score += s.cfg.SubjectWeight
			result.Findings = append(result.Findings, core.Finding{Location: core.LocationSubject, Keyword: keyword})
		}
	}

	words := strings.Fields(normalizeText(body))
	split := min(max(s.cfg.EarlyBodyWords, 0), len(words))
	early := strings.Join(words[:split], " ")
	late := strings.Join(words[split:], " ")

	for _, keyword := range s.keywords {
		switch {
		case containsWord(early, keyword):
			result.Score += s.cfg.EarlyBodyWeight
			result.Findings = append(result.Findings, core.Finding{Location: core.LocationEarlyBody, Keyword: keyword})
		case containsWord(late, keyword):
			result.Score += s.cfg.LateBodyWeight
			result.Findings = append(result.Findings, core.Finding{Location: core.LocationLateBody, Keyword: keyword})
		}
	}

	return result
}

func normalizeText(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// containsWord reports whether keyword occurs in text with no letter or digit
// immediately before or after it.
func containsWord(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	for offset := 0; offset <= len(text)-len(keyword); {
		idx := strings.Index(text[offset:], keyword)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(keyword)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

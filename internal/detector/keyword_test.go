package detector

import (
	"strings"
	"testing"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestKeywordScorerSubject(t *testing.T) {
	s := NewKeywordScorer([]string{"winner"}, DefaultKeywordConfig())

	result := s.Score("You are a WINNER today", "")

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, []core.Finding{{Location: core.LocationSubject, Keyword: "winner"}}, result.Findings)
}

func TestKeywordScorerWordBoundary(t *testing.T) {
	s := NewKeywordScorer([]string{"free", "cash"}, DefaultKeywordConfig())

	result := s.Score("cashier position", "this is about freedom")

	assert.Empty(t, result.Findings)
	assert.Zero(t, result.Score)
}

func TestKeywordScorerPunctuationIsBoundary(t *testing.T) {
	s := NewKeywordScorer([]string{"urgent", "act now"}, DefaultKeywordConfig())

	result := s.Score("URGENT: account", "Please act now!")

	assert.Equal(t, 3+2, result.Score)
	assert.Equal(t, []core.Finding{
		{Location: core.LocationSubject, Keyword: "urgent"},
		{Location: core.LocationEarlyBody, Keyword: "act now"},
	}, result.Findings)
}

func TestKeywordScorerPhraseAcrossWhitespace(t *testing.T) {
	s := NewKeywordScorer([]string{"verify account"}, DefaultKeywordConfig())

	result := s.Score("Please verify  \taccount", "you must verify\n account today")

	assert.Equal(t, 3+2, result.Score)
	assert.Equal(t, []core.Finding{
		{Location: core.LocationSubject, Keyword: "verify account"},
		{Location: core.LocationEarlyBody, Keyword: "verify account"},
	}, result.Findings)
}

func TestKeywordScorerEarlyShortCircuitsLate(t *testing.T) {
	cfg := DefaultKeywordConfig()
	cfg.EarlyBodyWords = 3
	s := NewKeywordScorer([]string{"verify", "password"}, cfg)

	body := "please verify now and then verify your password again"

	result := s.Score("", body)

	assert.Equal(t, 2+1, result.Score)
	assert.Equal(t, []core.Finding{
		{Location: core.LocationEarlyBody, Keyword: "verify"},
		{Location: core.LocationLateBody, Keyword: "password"},
	}, result.Findings)
}

func TestKeywordScorerDefaultSplitAtHundredWords(t *testing.T) {
	s := NewKeywordScorer([]string{"prize"}, DefaultKeywordConfig())

	body := strings.Repeat("filler ", 100) + "claim your prize"

	result := s.Score("", body)

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, core.LocationLateBody, result.Findings[0].Location)
}

func TestKeywordScorerExistenceNotCount(t *testing.T) {
	s := NewKeywordScorer([]string{"free"}, DefaultKeywordConfig())

	result := s.Score("free free free", "free free")

	assert.Equal(t, 3+2, result.Score)
	assert.Len(t, result.Findings, 2)
}

func TestKeywordScorerSkipsBlankKeywords(t *testing.T) {
	s := NewKeywordScorer([]string{"", "  "}, DefaultKeywordConfig())

	result := s.Score("anything", "at all")

	assert.Zero(t, result.Score)
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("free", "free"))
	assert.True(t, containsWord("a free-for-all", "free"))
	assert.False(t, containsWord("carefree", "free"))
	assert.False(t, containsWord("free2play", "free"))
	assert.True(t, containsWord("freedom and free", "free"))
	assert.False(t, containsWord("", "free"))
	assert.True(t, containsWord("café offer", "offer"))
	assert.False(t, containsWord("écash", "cash"))
}

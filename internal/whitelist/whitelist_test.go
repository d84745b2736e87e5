package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "@bank.com", Normalize("bank.com"))
	assert.Equal(t, "@bank.com", Normalize(" @Bank.COM "))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize("@"))
}

func TestCheckerUnionAndOrder(t *testing.T) {
	c := NewChecker([]string{"@bank.com", "corp.example"}, []string{"gmail.com", "@BANK.com"}, zap.NewNop())

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"@bank.com", "@corp.example", "@gmail.com"}, c.Domains())
	assert.True(t, c.IsTrusted("@gmail.com"))
	assert.True(t, c.IsTrusted("corp.example"))
	assert.False(t, c.IsTrusted("@bnak.com"))
}

func TestCheckerNilLogger(t *testing.T) {
	c := NewChecker(nil, nil, nil)
	assert.Zero(t, c.Len())
	assert.False(t, c.IsTrusted("@gmail.com"))
}

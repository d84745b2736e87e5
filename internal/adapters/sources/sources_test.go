package sources

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "act now", NormalizeKeyword("  ACT   Now "))
	// fullwidth letters fold under NFKC
	assert.Equal(t, "free", NormalizeKeyword("ＦＲＥＥ"))
	assert.Equal(t, "", NormalizeKeyword(" \t "))
}

func TestTextFile(t *testing.T) {
	path := writeFile(t, "words.txt", "Winner\n\n  urgent  \n")

	keywords, err := TextFile{Path: path}.Keywords()

	require.NoError(t, err)
	assert.Equal(t, []string{"Winner", "urgent"}, keywords)
}

func TestCSVFileSkipsHeader(t *testing.T) {
	path := writeFile(t, "words.csv", "keyword,count\nprize,10\n\"verify now\",3\nsolo\n")

	keywords, err := CSVFile{Path: path, SkipHeader: true}.Keywords()

	require.NoError(t, err)
	assert.Equal(t, []string{"prize", "verify now", "solo"}, keywords)
}

func TestMissingFile(t *testing.T) {
	_, err := TextFile{Path: filepath.Join(t.TempDir(), "nope.txt")}.Keywords()

	assert.Error(t, err)
}

func TestLoadKeywordsMergesAndFilters(t *testing.T) {
	text := writeFile(t, "a.txt", "Winner\nurgent\nthis phrase is far too long to keep\n")
	csvPath := writeFile(t, "b.csv", "keyword\nWINNER\nprize\n")

	keywords, err := LoadKeywords(5, TextFile{Path: text}, CSVFile{Path: csvPath, SkipHeader: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"prize", "urgent", "winner"}, keywords)
}

func TestLoadKeywordsPropagatesErrors(t *testing.T) {
	_, err := LoadKeywords(0, Embedded{}, TextFile{Path: "/does/not/exist"})

	assert.Error(t, err)
}

func TestEmbeddedKeywords(t *testing.T) {
	keywords, err := LoadKeywords(0, Embedded{})

	require.NoError(t, err)
	assert.Contains(t, keywords, "winner")
	assert.Contains(t, keywords, "verify your account")
}

func TestWriteKeywords(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteKeywords(&buf, []string{"a", "b c"}))

	assert.Equal(t, "a\nb c\n", buf.String())
}

func TestLoadDomainList(t *testing.T) {
	path := writeFile(t, "safe.txt", "# trusted\nBank.com\n@corp.example\n\n")

	domains, err := LoadDomains(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"@bank.com", "@corp.example"}, domains)
}

func TestLoadDomainCacheJSON(t *testing.T) {
	path := writeFile(t, "safe.json", `["@gmail.com", "bank.com"]`)

	domains, err := LoadDomains(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"@gmail.com", "@bank.com"}, domains)
}

func TestLoadDomainCacheYAML(t *testing.T) {
	path := writeFile(t, "safe.yaml", "- \"@gmail.com\"\n- bank.com\n")

	domains, err := LoadDomains(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"@gmail.com", "@bank.com"}, domains)
}

func TestLoadDomainCacheInvalid(t *testing.T) {
	path := writeFile(t, "safe.json", `{"not": "a list"}`)

	_, err := LoadDomains(path)

	assert.Error(t, err)
}

func TestDefaultFreeEmailDomains(t *testing.T) {
	domains := DefaultFreeEmailDomains()

	assert.Contains(t, domains, "@gmail.com")
	assert.Contains(t, domains, "@outlook.com")
}

// Package sources loads the keyword list and the trusted domain sets the
// detectors run against.
package sources

import (
	"bufio"
	_ "embed"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

//go:embed data/keywords.txt
var defaultKeywords string

// KeywordSource yields raw keywords from one place
type KeywordSource interface {
	Keywords() ([]string, error)
}

// TextFile reads one keyword per line
type TextFile struct {
	Path string
}

// Keywords implements KeywordSource
func (f TextFile) Keywords() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open keyword file %s", f.Path)
	}
	defer file.Close()

	return readLines(file)
}

// CSVFile reads the first column of a CSV file, optionally skipping a header row
type CSVFile struct {
	Path       string
	SkipHeader bool
}

// Keywords implements KeywordSource
func (f CSVFile) Keywords() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open keyword file %s", f.Path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var keywords []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read %s", f.Path)
		}
		if row == 0 && f.SkipHeader {
			continue
		}
		if len(record) > 0 {
			keywords = append(keywords, record[0])
		}
	}
	return keywords, nil
}

// Embedded is the built-in keyword list
type Embedded struct{}

// Keywords implements KeywordSource
func (Embedded) Keywords() ([]string, error) {
	return readLines(strings.NewReader(defaultKeywords))
}

// NormalizeKeyword applies NFKC, lowercases and collapses inner whitespace
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(keyword))), " ")
}

// LoadKeywords merges sources into one normalized, de-duplicated, sorted list.
// Phrases longer than maxWords are dropped when maxWords is positive.
func LoadKeywords(maxWords int, sources ...KeywordSource) ([]string, error) {
	seen := make(map[string]struct{})
	for _, source := range sources {
		raw, err := source.Keywords()
		if err != nil {
			return nil, err
		}
		for _, keyword := range raw {
			keyword = NormalizeKeyword(keyword)
			if keyword == "" {
				continue
			}
			if maxWords > 0 && len(strings.Fields(keyword)) > maxWords {
				continue
			}
			seen[keyword] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(seen))
	for keyword := range seen {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	return keywords, nil
}

// WriteKeywords writes one keyword per line
func WriteKeywords(w io.Writer, keywords []string) error {
	bw := bufio.NewWriter(w)
	for _, keyword := range keywords {
		if _, err := bw.WriteString(keyword + "\n"); err != nil {
			return eris.Wrap(err, "failed to write keyword")
		}
	}
	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "failed to flush keywords")
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read lines")
	}
	return lines, nil
}

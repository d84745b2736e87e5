package sources

import (
	_ "embed"
	"os"
	"strings"

	"github.com/mikey/phishing-detector/internal/whitelist"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/free_email_domains.txt
var defaultFreeEmailDomains string

// DefaultFreeEmailDomains returns the built-in list of public webmail providers
func DefaultFreeEmailDomains() []string {
	domains, _ := readLines(strings.NewReader(defaultFreeEmailDomains))
	return normalizeDomains(domains)
}

// LoadDomainList reads one domain per line. Lines starting with # are ignored.
func LoadDomainList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open domain list %s", path)
	}
	defer file.Close()

	lines, err := readLines(file)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read domain list %s", path)
	}

	domains := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			domains = append(domains, line)
		}
	}
	return normalizeDomains(domains), nil
}

// LoadDomainCache reads a pre-computed domain cache file holding a JSON array
// or a YAML list of domains.
func LoadDomainCache(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read domain cache %s", path)
	}

	var domains []string
	if err := yaml.Unmarshal(raw, &domains); err != nil {
		return nil, eris.Wrapf(err, "failed to parse domain cache %s", path)
	}
	return normalizeDomains(domains), nil
}

// LoadDomains picks the loader by file extension: .json, .yaml and .yml are
// cache files, anything else is a plain list.
func LoadDomains(path string) ([]string, error) {
	switch {
	case strings.HasSuffix(path, ".json"), strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return LoadDomainCache(path)
	default:
		return LoadDomainList(path)
	}
}

func normalizeDomains(raw []string) []string {
	domains := make([]string, 0, len(raw))
	for _, d := range raw {
		if d = whitelist.Normalize(d); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

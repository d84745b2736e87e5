package detector

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// ExtractURLs returns every http(s) URL in text in order of appearance.
// Each match is cut at the first markup character and stripped of trailing
// punctuation.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, match := range matches {
		if i := strings.IndexAny(match, `<>"'&`); i >= 0 {
			match = match[:i]
		}
		match = strings.TrimRight(match, ".,;:!?)]}")
		if authority(match) == "" {
			continue
		}
		urls = append(urls, match)
	}
	return urls
}

// authority returns the lowercased host[:port] of a URL, without userinfo.
func authority(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return strings.ToLower(u.Host)
	}

	_, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	return strings.ToLower(rest)
}

// groupByDomain maps each authority to its longest URL. The returned domains
// are in first-seen order and equal-length URLs keep the earlier one.
func groupByDomain(urls []string) ([]string, map[string]string) {
	var domains []string
	longest := make(map[string]string)
	for _, u := range urls {
		domain := authority(u)
		current, seen := longest[domain]
		if !seen {
			domains = append(domains, domain)
			longest[domain] = u
			continue
		}
		if len(u) > len(current) {
			longest[domain] = u
		}
	}
	return domains, longest
}

// hostOnly strips the port from an authority.
func hostOnly(authority string) string {
	if strings.HasPrefix(authority, "[") {
		if i := strings.Index(authority, "]"); i >= 0 {
			return authority[:i+1]
		}
		return authority
	}
	if strings.Count(authority, ":") > 1 {
		// bare IPv6
		return authority
	}
	host, _, _ := strings.Cut(authority, ":")
	return host
}

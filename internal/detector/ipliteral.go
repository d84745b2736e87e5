package detector

import (
	"net"
	"strconv"
	"strings"
)

// IsIPHost reports whether host is an IP address written in any form a browser
// would accept: dotted quad, IPv6 (bracketed or bare), a single decimal or hex
// "dword", or two to four dot-separated parts in decimal, octal (leading 0) or
// hex (leading 0x), freely mixed.
func IsIPHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	_, ok := decodeIPv4(host)
	return ok
}

// decodeIPv4 follows inet_aton: the last part fills all remaining bytes.
func decodeIPv4(host string) (uint32, bool) {
	parts := strings.Split(host, ".")
	if len(parts) > 4 {
		return 0, false
	}

	values := make([]uint64, len(parts))
	for i, part := range parts {
		v, ok := parseIPPart(part)
		if !ok {
			return 0, false
		}
		values[i] = v
	}

	var addr uint64
	for i, v := range values[:len(values)-1] {
		if v > 0xff {
			return 0, false
		}
		addr |= v << (8 * (3 - i))
	}

	last := values[len(values)-1]
	if last >= 1<<(8*(5-len(values))) {
		return 0, false
	}
	addr |= last

	return uint32(addr), true
}

func parseIPPart(part string) (uint64, bool) {
	if part == "" {
		return 0, false
	}

	base := 10
	digits := part
	switch {
	case strings.HasPrefix(part, "0x"):
		base = 16
		digits = part[2:]
		if digits == "" {
			// "0x" alone is zero
			return 0, true
		}
	case len(part) > 1 && part[0] == '0':
		base = 8
		digits = part[1:]
	}

	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

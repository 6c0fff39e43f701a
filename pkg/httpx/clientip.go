package httpx

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is the sentinel identity used when no candidate parses as a
// valid IP address.
const UnknownIP = "unknown"

// Proxy-forwarding headers checked in priority order. X-Forwarded-For is
// last because it is the most commonly spoofed; within it, candidates are
// scanned left to right.
var forwardingHeaders = []string{
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

// ClientIP derives the client identity for rate limiting and audit
// records: the first public (non-private, non-reserved) address found in
// the forwarding headers, falling back to the connection's remote
// address, falling back to "unknown".
func ClientIP(r *http.Request) string {
	for _, header := range forwardingHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		for _, candidate := range strings.Split(value, ",") {
			ip := net.ParseIP(strings.TrimSpace(candidate))
			if ip != nil && isPublicIP(ip) {
				return ip.String()
			}
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(r.RemoteAddr); ip != nil {
		return ip.String()
	}

	return UnknownIP
}

// isPublicIP reports whether ip is routable on the public internet.
func isPublicIP(ip net.IP) bool {
	switch {
	case ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsMulticast():
		return false
	}
	return true
}

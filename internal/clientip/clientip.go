// Package clientip resolves the canonical client network address for a
// request. Resolution order: X-Forwarded-For (left-most entry), X-Real-IP,
// then the transport peer address. Header values are taken on trust; the
// access gate applies only to deployments behind a proxy the operator
// controls.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Loopback is the canonical local address substituted for container-internal
// peers and used as the fallback when resolution fails.
const Loopback = "127.0.0.1"

// containerInternalPrefixes are peer addresses produced by container bridge
// networking rather than a real external client. They only apply to the
// transport peer address, never to forwarded headers.
var containerInternalPrefixes = []string{"10.", "172.", "192.168."}

// Resolve extracts a single client address from the request. It never fails:
// anything unresolvable comes back as the loopback address.
func Resolve(r *http.Request) string {
	if r == nil {
		return Loopback
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First entry is the original client
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	return normalizePeer(r.RemoteAddr)
}

// Source resolves the client address and reports which input produced it,
// for diagnostics.
func Source(r *http.Request) (ip, source string) {
	switch {
	case r == nil:
		return Loopback, "fallback"
	case r.Header.Get("X-Forwarded-For") != "":
		return Resolve(r), "X-Forwarded-For"
	case r.Header.Get("X-Real-IP") != "":
		return Resolve(r), "X-Real-IP"
	default:
		return Resolve(r), "remote_addr"
	}
}

// normalizePeer strips the port from a transport peer address and maps
// container-internal addresses to loopback.
func normalizePeer(remoteAddr string) string {
	if remoteAddr == "" {
		return Loopback
	}

	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	if host == "::1" {
		return Loopback
	}
	for _, prefix := range containerInternalPrefixes {
		if strings.HasPrefix(host, prefix) {
			return Loopback
		}
	}

	if net.ParseIP(host) == nil {
		return Loopback
	}
	return host
}

// IsValid reports whether s is a parseable IPv4/IPv6 literal.
func IsValid(s string) bool {
	return net.ParseIP(s) != nil
}

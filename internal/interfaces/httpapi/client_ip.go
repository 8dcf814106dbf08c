package httpapi

import (
	"net/http"
	"net/netip"
	"strings"
)

// forwardedIPHeaders are consulted in order before RemoteAddr.
var forwardedIPHeaders = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}

func resolveClientIP(r *http.Request) string {
	for _, header := range forwardedIPHeaders {
		if addr, ok := parseClientAddr(firstForwarded(r.Header.Get(header))); ok {
			return addr.String()
		}
	}
	if addrPort, err := netip.ParseAddrPort(strings.TrimSpace(r.RemoteAddr)); err == nil {
		return addrPort.Addr().Unmap().String()
	}
	if addr, ok := parseClientAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return ""
}

// rateLimitKey buckets authenticated callers by user and everyone else by address.
func rateLimitKey(r *http.Request) string {
	if principal, ok := principalFromContext(r.Context()); ok {
		return "user:" + principal.UserID
	}
	if ip := resolveClientIP(r); ip != "" {
		return "ip:" + ip
	}
	return ""
}

func firstForwarded(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

func parseClientAddr(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

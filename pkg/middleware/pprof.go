package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"net/netip"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MountPprof exposes /debug/pprof to callers inside allowedCIDRs. Nothing is
// mounted when the list is empty.
func MountPprof(r chi.Router, allowedCIDRs []string, log *slog.Logger) {
	if len(allowedCIDRs) == 0 {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(IPAllowlist(allowedCIDRs, log))
		r.HandleFunc("/debug/pprof/*", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	})
}

// IPAllowlist admits only remote addresses inside one of cidrs. Unparseable
// entries are logged and ignored.
func IPAllowlist(cidrs []string, log *slog.Logger) func(http.Handler) http.Handler {
	prefixes := ParseCIDRs(cidrs, log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := remoteHost(r)
			if addr, err := netip.ParseAddr(host); err == nil && inPrefixes(prefixes, addr) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("access denied by IP allowlist", slog.String("ip", host), slog.String("path", r.URL.Path))
			reject(w, r, http.StatusForbidden, "FORBIDDEN", "access restricted")
		})
	}
}

// ParseCIDRs parses cidrs into masked prefixes. Invalid entries are logged
// and skipped.
func ParseCIDRs(cidrs []string, log *slog.Logger) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(c))
		if err != nil {
			log.Warn("ignoring invalid CIDR", slog.String("cidr", c), slog.String("error", err.Error()))
			continue
		}
		prefixes = append(prefixes, p.Masked())
	}
	return prefixes
}

func inPrefixes(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteHost is the host part of the connection's remote address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

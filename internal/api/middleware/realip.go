package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ipSet matches addresses against single IPs and CIDR ranges.
type ipSet struct {
	nets []*net.IPNet
	ips  map[string]bool
}

func newIPSet(entries []string, logger zerolog.Logger) *ipSet {
	s := &ipSet{ips: make(map[string]bool)}
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR")
				continue
			}
			s.nets = append(s.nets, ipNet)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			s.ips[ip.String()] = true
		} else {
			logger.Warn().Str("entry", entry).Msg("invalid IP")
		}
	}
	return s
}

func (s *ipSet) empty() bool {
	return s == nil || (len(s.nets) == 0 && len(s.ips) == 0)
}

func (s *ipSet) contains(ipStr string) bool {
	if s == nil {
		return false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if s.ips[ip.String()] {
		return true
	}
	for _, ipNet := range s.nets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// remoteIP returns the host part of r.RemoteAddr.
func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// TrustedProxies resolves the client address of a request. Forwarding
// headers are honoured only when the connection comes from a listed proxy.
type TrustedProxies struct {
	set *ipSet
}

// NewTrustedProxies builds a resolver from IPs and CIDRs. With no entries,
// forwarding headers are always ignored.
func NewTrustedProxies(entries []string, logger zerolog.Logger) *TrustedProxies {
	tp := &TrustedProxies{set: newIPSet(entries, logger)}
	if !tp.set.empty() {
		logger.Info().
			Int("ips", len(tp.set.ips)).
			Int("cidrs", len(tp.set.nets)).
			Msg("trusted proxies configured")
	}
	return tp
}

// ClientIP returns the socket peer, or when the peer is a trusted proxy,
// the right-most X-Forwarded-For entry that is not itself a trusted proxy.
// X-Real-IP is used when X-Forwarded-For is absent.
func (tp *TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteIP(r)
	if tp == nil || !tp.set.contains(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !tp.set.contains(hop) {
				return hop
			}
		}
		return peer
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return peer
}

// Handler rewrites r.RemoteAddr to the resolved client IP, so the access
// log and the rate limiter see the same address.
func (tp *TrustedProxies) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := tp.ClientIP(r); ip != remoteIP(r) {
			r.RemoteAddr = net.JoinHostPort(ip, "0")
		}
		next.ServeHTTP(w, r)
	})
}

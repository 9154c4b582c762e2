package message

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// OriginPolicy decides which document origins may message the shell
type OriginPolicy struct {
	scheme  string
	host    string
	port    string
	trusted string
	// local is the development host the shell runs on, if any
	local string
}

// NewOriginPolicy creates a policy for a shell served at shellOrigin.
// trustedLabel forms the trusted sibling origin; localHosts lists the
// hosts treated as local development hosts.
func NewOriginPolicy(shellOrigin, trustedLabel string, localHosts []string) (*OriginPolicy, error) {
	scheme, host, port, err := splitOrigin(shellOrigin)
	if err != nil {
		return nil, fmt.Errorf("invalid shell origin: %w", err)
	}

	p := &OriginPolicy{scheme: scheme, host: host, port: port}
	if trustedLabel != "" {
		p.trusted = trustedLabel + "." + host
	}

	for _, lh := range localHosts {
		lh, err := normalizeHost(lh)
		if err != nil || lh == "" {
			continue
		}
		if host == lh || strings.HasSuffix(host, "."+lh) {
			p.local = lh
			break
		}
	}
	return p, nil
}

// Allow reports whether messages from origin are acted on. A nil policy
// rejects everything.
func (p *OriginPolicy) Allow(origin string) bool {
	if p == nil {
		return false
	}
	scheme, host, port, err := splitOrigin(origin)
	if err != nil {
		return false
	}

	sameSchemePort := scheme == p.scheme && port == p.port

	if sameSchemePort && host == p.host {
		return true
	}
	if sameSchemePort && p.trusted != "" && host == p.trusted {
		return true
	}

	if p.local != "" {
		return host == p.local || strings.HasSuffix(host, "."+p.local)
	}

	return sameSchemePort && isDomain(host) && isDomain(p.host) && registrable(host) == registrable(p.host)
}

// Origin returns the normalized shell origin
func (p *OriginPolicy) Origin() string {
	return p.scheme + "://" + joinHostPort(p.scheme, p.host, p.port)
}

// TrustedOrigin returns the normalized trusted sibling origin, or ""
func (p *OriginPolicy) TrustedOrigin() string {
	if p.trusted == "" {
		return ""
	}
	return p.scheme + "://" + joinHostPort(p.scheme, p.trusted, p.port)
}

// splitOrigin parses an origin into scheme, ASCII host and effective port
func splitOrigin(origin string) (scheme, host, port string, err error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", "", "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", "", fmt.Errorf("not an origin: %q", origin)
	}
	if u.Path != "" && u.Path != "/" {
		return "", "", "", fmt.Errorf("origin has a path: %q", origin)
	}

	scheme = strings.ToLower(u.Scheme)
	host, err = normalizeHost(u.Hostname())
	if err != nil {
		return "", "", "", err
	}

	port = u.Port()
	if port == "" {
		port = defaultPort(scheme)
	}
	return scheme, host, port, nil
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	return strings.ToLower(ascii), nil
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	}
	return ""
}

func joinHostPort(scheme, host, port string) string {
	if port == "" || port == defaultPort(scheme) {
		return host
	}
	return net.JoinHostPort(host, port)
}

// isDomain reports whether host is a DNS name with at least two labels
func isDomain(host string) bool {
	return net.ParseIP(host) == nil && strings.Contains(host, ".")
}

// registrable returns the last two labels of host
func registrable(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

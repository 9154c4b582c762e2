package probe

import (
	"net/url"
	"strings"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// TopLevelURL builds the escape-hatch URL for an app:
// {scheme}://{label}.{host}{:port}{path}{suffix}
func TopLevelURL(origin *url.URL, label, path, suffix string) string {
	host := origin.Hostname()
	if label != "" {
		host = label + "." + host
	}
	if port := origin.Port(); port != "" {
		host += ":" + port
	}
	if path == "" {
		path = "/"
	}
	return origin.Scheme + "://" + host + path + suffix
}

// SubdomainLabel derives the DNS label an app is served under.
// Apps with a (process, publisher) pair use "{process}-{publisher}";
// others use their sanitized id.
func SubdomainLabel(app types.SubApplication) string {
	if app.ProcessName != "" && app.PublisherName != "" {
		return dnsLabel(app.ProcessName + "-" + app.PublisherName)
	}
	return dnsLabel(app.ID)
}

// dnsLabel lowercases s, maps every character outside [a-z0-9-] to '-',
// collapses runs of '-', trims leading/trailing '-' and caps the length at 63.
func dnsLabel(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !ok {
			if lastDash {
				continue
			}
			b.WriteByte('-')
			lastDash = true
			continue
		}
		b.WriteRune(r)
		lastDash = false
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > 63 {
		out = strings.TrimSuffix(out[:63], "-")
	}
	return out
}

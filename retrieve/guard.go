package retrieve

import (
	"net"
	"net/url"
	"strings"

	"github.com/fwojciec/sitebrief"
)

// ValidateTarget rejects URLs the chain must never fetch: non-absolute
// URLs, schemes other than http/https, and localhost or private-network
// hosts. The check is purely syntactic so rejection happens before any
// network activity.
func ValidateTarget(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return sitebrief.Errorf(sitebrief.EREJECTED, "invalid URL: %v", err)
	}
	if !u.IsAbs() {
		return sitebrief.Errorf(sitebrief.EREJECTED, "URL must be absolute: %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return sitebrief.Errorf(sitebrief.EREJECTED, "unsupported scheme %q", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return sitebrief.Errorf(sitebrief.EREJECTED, "URL has no host: %q", rawURL)
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return sitebrief.Errorf(sitebrief.EREJECTED, "localhost host %q not allowed", host)
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return sitebrief.Errorf(sitebrief.EREJECTED, "private-network host %q not allowed", host)
		}
	}

	return nil
}

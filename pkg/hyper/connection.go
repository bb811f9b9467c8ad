package hyper

import (
	"net/url"
	"strings"
)

// SchemeCloud marks a managed multi-tenant deployment. Cloud connections are
// always reached over https and carry the app name as their URL path.
const SchemeCloud = "cloud"

// ConnectionDescriptor is the parsed form of a connection string of the
// shape scheme://[key:secret@]host[/path].
type ConnectionDescriptor struct {
	Scheme   string // scheme as given, lowercased
	Protocol string // "https" for cloud, otherwise Scheme
	Host     string
	Key      string
	Secret   string
	BasePath string // URL path without a trailing slash
}

// ParseConnectionString parses a connection string. It never fails: parts
// that cannot be found are left empty, and a descriptor without a key or
// secret simply produces unauthenticated requests.
func ParseConnectionString(s string) ConnectionDescriptor {
	var d ConnectionDescriptor

	rest := strings.TrimSpace(s)
	if i := strings.Index(rest, "://"); i >= 0 {
		d.Scheme = strings.ToLower(rest[:i])
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	netloc := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		netloc = rest[:i]
		d.BasePath = strings.TrimRight(rest[i:], "/")
	}

	d.Host = netloc
	if at := strings.LastIndexByte(netloc, '@'); at >= 0 {
		d.Host = netloc[at+1:]
		userinfo := netloc[:at]
		first := strings.IndexByte(userinfo, ':')
		last := strings.LastIndexByte(userinfo, ':')
		if first >= 0 {
			d.Key = unescape(userinfo[:first])
			d.Secret = unescape(userinfo[last+1:])
		}
	}

	d.Protocol = d.Scheme
	if d.Scheme == SchemeCloud {
		d.Protocol = "https"
	}
	return d
}

// HasCredentials reports whether both a key and a secret are present.
func (d ConnectionDescriptor) HasCredentials() bool {
	return d.Key != "" && d.Secret != ""
}

// IsCloud reports whether the descriptor targets a cloud deployment.
func (d ConnectionDescriptor) IsCloud() bool {
	return d.Scheme == SchemeCloud
}

// Origin returns protocol://host.
func (d ConnectionDescriptor) Origin() string {
	return d.Protocol + "://" + d.Host
}

// Redacted returns the connection string with the secret masked, for logs.
func (d ConnectionDescriptor) Redacted() string {
	var b strings.Builder
	b.WriteString(d.Scheme)
	b.WriteString("://")
	if d.Key != "" {
		b.WriteString(d.Key)
		b.WriteString(":***@")
	}
	b.WriteString(d.Host)
	b.WriteString(d.BasePath)
	return b.String()
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

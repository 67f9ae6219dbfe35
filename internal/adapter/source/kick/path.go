package kick

import (
	"net/url"
	"strings"
)

// PathKind identifies how a Path rewrites the upstream URL
type PathKind string

const (
	KindDirect   PathKind = "direct"
	KindPrefix   PathKind = "prefix"
	KindTemplate PathKind = "template"
)

// Path is one network route to the upstream (direct or via a CORS-style proxy).
// Paths are tried in order; the first one yielding a usable payload wins.
type Path struct {
	Name  string
	Kind  PathKind
	Proxy string
}

// Direct returns a path that requests the upstream URL unchanged
func Direct() Path {
	return Path{Name: "direct", Kind: KindDirect}
}

// Prefix returns a path that appends the escaped target to proxy (e.g., "https://corsproxy.io/?")
func Prefix(name, proxy string) Path {
	return Path{Name: name, Kind: KindPrefix, Proxy: proxy}
}

// Template returns a path that substitutes the escaped target for {url} in proxy
func Template(name, proxy string) Path {
	return Path{Name: name, Kind: KindTemplate, Proxy: proxy}
}

// URL returns the request URL for target through this path
func (p Path) URL(target string) string {
	switch p.Kind {
	case KindPrefix:
		return p.Proxy + url.QueryEscape(target)
	case KindTemplate:
		return strings.ReplaceAll(p.Proxy, "{url}", url.QueryEscape(target))
	default:
		return target
	}
}

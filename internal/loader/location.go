package loader

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// location is a resolved mesh or side-file address: either an http(s) URL
// or a local path.
type location struct {
	url  *url.URL // set for remote locations
	path string   // set for local files
}

func (loc location) remote() bool { return loc.url != nil }

func (loc location) String() string {
	if loc.remote() {
		return loc.url.String()
	}
	return loc.path
}

// resolve turns a user-supplied URL or path into a location. Plain
// relative paths are taken relative to Config.BasePath.
func (l *Loader) resolve(raw string) (location, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			if u.Host == "" {
				return location{}, fmt.Errorf("%w: missing host in %q", ErrTransport, raw)
			}
			return location{url: u}, nil
		case "file":
			p := u.Path
			if p == "" {
				p = u.Opaque
			}
			return location{path: filepath.FromSlash(p)}, nil
		case "":
		default:
			// Windows drive letters parse as a one-letter scheme.
			if len(u.Scheme) > 1 {
				return location{}, fmt.Errorf("%w: unsupported scheme %q", ErrTransport, u.Scheme)
			}
		}
	}

	p := filepath.FromSlash(raw)
	if !filepath.IsAbs(p) && l.cfg.BasePath != "" {
		p = filepath.Join(l.cfg.BasePath, p)
	}
	return location{path: p}, nil
}

// join resolves ref against the directory containing loc. Absolute URLs in
// ref are honoured.
func (loc location) join(ref string) (location, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return location{}, fmt.Errorf("empty reference")
	}

	if r, err := url.Parse(ref); err == nil && (r.Scheme == "http" || r.Scheme == "https") {
		return location{url: r}, nil
	}

	if loc.remote() {
		r, err := url.Parse(filepath.ToSlash(ref))
		if err != nil {
			return location{}, err
		}
		return location{url: loc.url.ResolveReference(r)}, nil
	}

	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		return location{path: p}, nil
	}
	return location{path: filepath.Join(filepath.Dir(loc.path), p)}, nil
}

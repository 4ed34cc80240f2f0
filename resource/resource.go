/*
	Package resource turns locator strings from a configuration into
	content on the local filesystem.

	A locator is classified by its scheme into one of a closed set of
	resource kinds.  Local paths are used as-is; everything else is
	fetched into the cache on first use and refreshed on later uses.
*/
package resource

import (
	"strings"
)

type Kind string

const (
	KindLocal     = Kind("local")
	KindGit       = Kind("git")
	KindMercurial = Kind("hg")
	KindHTTP      = Kind("http")
)

/*
	Resource is one of `Local`, `Git`, `Mercurial`, or `HTTP`.
	No other implementations exist.
*/
type Resource interface {
	Kind() Kind
	Locator() string
	_resource()
}

/*
	Pin fixes a version-controlled resource to a revision.
	At most one field may be set; none set means "the default branch, kept
	up to date".
*/
type Pin struct {
	Commit string
	Branch string
	Tag    string
}

func (p Pin) IsZero() bool {
	return p == Pin{}
}

// True if the pin names an immutable revision, which never needs refreshing.
func (p Pin) IsFixed() bool {
	return p.Commit != "" || p.Tag != ""
}

func (p Pin) validate() error {
	n := 0
	for _, s := range []string{p.Commit, p.Branch, p.Tag} {
		if s != "" {
			n++
		}
	}
	if n > 1 {
		return InvalidPinError.New("only one of commit, branch, and tag may be given (got commit=%q branch=%q tag=%q)", p.Commit, p.Branch, p.Tag)
	}
	return nil
}

// The revision to check out after cloning, if any.
func (p Pin) checkoutRef() string {
	if p.Commit != "" {
		return p.Commit
	}
	return p.Tag
}

type Local struct {
	Path string
}

type Git struct {
	URL string
	Pin Pin
}

type Mercurial struct {
	URL string
	Pin Pin
}

type HTTP struct {
	URL string
}

func (Local) Kind() Kind     { return KindLocal }
func (Git) Kind() Kind       { return KindGit }
func (Mercurial) Kind() Kind { return KindMercurial }
func (HTTP) Kind() Kind      { return KindHTTP }

func (r Local) Locator() string     { return r.Path }
func (r Git) Locator() string       { return r.URL }
func (r Mercurial) Locator() string { return r.URL }
func (r HTTP) Locator() string      { return r.URL }

func (Local) _resource()     {}
func (Git) _resource()       {}
func (Mercurial) _resource() {}
func (HTTP) _resource()      {}

/*
	Picks the resource kind for a locator by its scheme.
	Anything without a recognized scheme is a local path.
*/
func Classify(locator string) Kind {
	switch {
	case strings.HasPrefix(locator, "git://"), strings.HasPrefix(locator, "ssh+git://"):
		return KindGit
	case strings.HasPrefix(locator, "http+hg://"), strings.HasPrefix(locator, "https+hg://"):
		return KindMercurial
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return KindHTTP
	default:
		return KindLocal
	}
}

/*
	Classifies `locator` and builds the matching resource.

	Fails with `InvalidPinError` if the pin sets more than one field, or if
	any pin is given for a local path or HTTP URL.
*/
func New(locator string, pin Pin) (Resource, error) {
	if err := pin.validate(); err != nil {
		return nil, err
	}
	kind := Classify(locator)
	switch kind {
	case KindGit:
		return Git{URL: locator, Pin: pin}, nil
	case KindMercurial:
		return Mercurial{URL: locator, Pin: pin}, nil
	}
	if !pin.IsZero() {
		return nil, InvalidPinError.New("%q is a %s resource, which can't be pinned to a revision", locator, kind)
	}
	if kind == KindHTTP {
		return HTTP{URL: locator}, nil
	}
	return Local{Path: locator}, nil
}

/*
	The URL to hand to the fetching tool, with dwight's scheme decorations
	stripped: `ssh+git://h/r` becomes `ssh://h/r`, `http+hg://h/r` becomes
	`http://h/r`.
*/
func transportURL(locator string) string {
	for from, to := range map[string]string{
		"ssh+git://":  "ssh://",
		"http+hg://":  "http://",
		"https+hg://": "https://",
	} {
		if strings.HasPrefix(locator, from) {
			return to + strings.TrimPrefix(locator, from)
		}
	}
	return locator
}

package resource

import (
	"polydawn.net/dwight/cache"
)

/*
	Returns the cache key for a resource.  Local resources aren't cached,
	and get `false`.

	Keys are a function of the locator and pin only, so the same
	configuration always maps to the same cache entry.
*/
func KeyOf(res Resource) (cache.Key, bool) {
	switch r := res.(type) {
	case Git:
		return pinnedKey(KindGit, r.URL, r.Pin), true
	case Mercurial:
		return pinnedKey(KindMercurial, r.URL, r.Pin), true
	case HTTP:
		return cache.Key{Kind: string(KindHTTP), URL: r.URL}, true
	default:
		return cache.Key{}, false
	}
}

func pinnedKey(kind Kind, url string, pin Pin) cache.Key {
	return cache.Key{
		Kind:   string(kind),
		URL:    url,
		Commit: pin.Commit,
		Branch: pin.Branch,
		Tag:    pin.Tag,
	}
}

package resource

import (
	"os"

	"polydawn.net/dwight/cache"
)

/*
	Produces a local path holding the content of `res`.

	Local resources resolve to their own path and a nil key.  Anything else
	goes through `c`: on first use it's fetched into a new cache item, and on
	later uses the existing item is refreshed in place.  The returned key is
	the cache entry in use, for protecting it from eviction.

	A fetch that fails leaves nothing behind in the cache.
*/
func (f Fetcher) Resolve(res Resource, c *cache.Cache) (string, *cache.Key, error) {
	key, cacheable := KeyOf(res)
	if !cacheable {
		return res.Locator(), nil, nil
	}
	log := f.Log.New("key", key)

	if path, found := c.Lookup(key); found {
		log.Debug("cache hit", "path", path)
		changed, err := f.Refresh(res, path)
		if err != nil {
			return "", nil, err
		}
		if changed {
			if err := c.UpdateSize(path); err != nil {
				return "", nil, err
			}
		}
		return path, &key, nil
	}

	log.Debug("cache miss")
	dir, err := c.AllocatePath()
	if err != nil {
		return "", nil, err
	}
	f.Log = log
	path, err := f.Fetch(res, dir)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn("could not clean up after failed fetch", "path", dir, "err", rmErr)
		}
		return "", nil, err
	}
	if err := c.Register(path, key); err != nil {
		return "", nil, err
	}
	return path, &key, nil
}

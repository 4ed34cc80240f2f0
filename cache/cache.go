/*
	Package cache keeps fetched resources on disk between runs, and evicts
	them oldest-first when they outgrow their budget.

	A cache is a directory holding:

		.lock        -- flock'd for as long as a `Cache` is open.
		.state.json  -- the item list and id counter.
		items/<id>   -- one dir per fetched resource.

	Items are looked up by `Key`.  The cache itself never fetches anything;
	see `resource.Resolve` for the fetch-or-refresh protocol built on it.
*/
package cache

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/inconshreveable/log15"

	"polydawn.net/dwight/lib/fs"
)

const (
	stateFileName = ".state.json"
	lockFileName  = ".lock"
	itemsDirName  = "items"
)

type Cache struct {
	root  string
	state state
	lock  *os.File
	log   log15.Logger
}

/*
	Opens (creating if necessary) the cache at `root`.

	Blocks until no other process holds the cache.  The caller must `Close`
	the cache to let others in.
*/
func Open(root string, log log15.Logger) (*Cache, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, CacheIOError.Wrap(err)
	}
	if err := os.MkdirAll(filepath.Join(root, itemsDirName), 0755); err != nil {
		return nil, CacheIOError.New("cannot create cache dir %q: %s", root, err)
	}
	lock, err := acquireLock(filepath.Join(root, lockFileName))
	if err != nil {
		return nil, err
	}
	st, err := loadState(filepath.Join(root, stateFileName))
	if err != nil {
		releaseLock(lock)
		return nil, err
	}
	if st.Items == nil {
		st.Items = []Item{}
	}
	log = log.New("cache", root)
	log.Debug("cache opened", "items", len(st.Items))
	return &Cache{
		root:  root,
		state: st,
		lock:  lock,
		log:   log,
	}, nil
}

func (c *Cache) Root() string { return c.root }

// Releases the lock.  The cache must not be used afterwards.
func (c *Cache) Close() error {
	if c.lock == nil {
		return nil
	}
	err := releaseLock(c.lock)
	c.lock = nil
	return err
}

func (c *Cache) save() error {
	return saveState(filepath.Join(c.root, stateFileName), c.state)
}

/*
	Returns the path registered for `key`, if any.
*/
func (c *Cache) Lookup(key Key) (string, bool) {
	for _, item := range c.state.Items {
		if item.Key == key {
			return item.Path, true
		}
	}
	return "", false
}

/*
	Reserves a fresh, empty dir for a new item.

	Ids that already have something on disk are skipped (leftovers from a
	crash, or a state file that went missing).  The advanced counter is
	persisted immediately so the id is never handed out twice.
*/
func (c *Cache) AllocatePath() (string, error) {
	var path string
	for {
		id := c.state.NextID
		c.state.NextID++
		path = filepath.Join(c.root, itemsDirName, strconv.Itoa(id))
		if _, err := os.Lstat(path); os.IsNotExist(err) {
			break
		}
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", CacheIOError.New("cannot create cache item %q: %s", path, err)
	}
	if err := c.save(); err != nil {
		return "", err
	}
	c.log.Debug("allocated cache path", "path", path)
	return path, nil
}

/*
	Records `path` as holding the content for `key`, measuring its size.

	`path` is usually what `AllocatePath` returned, but may be a file
	within it (downloads are stored as a single file in their item dir).
*/
func (c *Cache) Register(path string, key Key) error {
	size, err := fs.TotalSize(path)
	if err != nil {
		return err
	}
	c.state.Items = append(c.state.Items, Item{
		Key:  key,
		Path: path,
		Size: size,
		ID:   c.idOf(path),
	})
	c.log.Info("cached new item", "key", key, "path", path, "size", humanize.IBytes(uint64(size)))
	return c.save()
}

func (c *Cache) idOf(path string) int {
	rel, err := filepath.Rel(filepath.Join(c.root, itemsDirName), path)
	if err != nil {
		return -1
	}
	id, err := strconv.Atoi(strings.SplitN(rel, string(filepath.Separator), 2)[0])
	if err != nil {
		return -1
	}
	return id
}

/*
	Re-measures an item after its content changed in place (e.g. a pull).
*/
func (c *Cache) UpdateSize(path string) error {
	for i := range c.state.Items {
		if c.state.Items[i].Path != path {
			continue
		}
		size, err := fs.TotalSize(path)
		if err != nil {
			return err
		}
		c.state.Items[i].Size = size
		c.log.Debug("cache item resized", "path", path, "size", size)
		return c.save()
	}
	return NotFound.New("%q not found in cache state", path)
}

/*
	Evicts items, oldest first, until the cache totals no more than
	`maxBytes`.  Items whose key is in `protected` are never evicted, even
	if that leaves the cache over budget.

	Removal is attempted for every selected item even if some fail; failed
	items stay on the books.  The state is saved regardless, and the first
	failure is returned.
*/
func (c *Cache) Cleanup(maxBytes int64, protected []Key) error {
	isProtected := func(k Key) bool {
		for _, p := range protected {
			if p == k {
				return true
			}
		}
		return false
	}

	current := c.TotalSize()
	evict := map[int]bool{}
	for i, item := range c.state.Items {
		if current <= maxBytes {
			break
		}
		if isProtected(item.Key) {
			continue
		}
		current -= item.Size
		evict[i] = true
	}
	if len(evict) == 0 {
		return nil
	}

	var firstErr error
	kept := make([]Item, 0, len(c.state.Items)-len(evict))
	for i, item := range c.state.Items {
		if !evict[i] {
			kept = append(kept, item)
			continue
		}
		c.log.Info("evicting cache item", "key", item.Key, "path", item.Path, "size", humanize.IBytes(uint64(item.Size)))
		if err := fs.RemoveItem(item.Path); err != nil {
			c.log.Warn("failed to evict cache item", "path", item.Path, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			kept = append(kept, item)
		}
	}
	c.state.Items = kept
	if err := c.save(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// A copy of the current items, oldest first.
func (c *Cache) Items() []Item {
	items := make([]Item, len(c.state.Items))
	copy(items, c.state.Items)
	return items
}

func (c *Cache) TotalSize() int64 {
	var total int64
	for _, item := range c.state.Items {
		total += item.Size
	}
	return total
}

package cache

import (
	"strings"
)

/*
	Key identifies fetched content in the cache.

	Keys are plain comparable values: two keys are the same entry exactly
	when they are `==`.  Which fields are filled depends on the kind of
	resource; HTTP resources only ever set Kind and URL.
*/
type Key struct {
	Kind   string `codec:"kind"`
	URL    string `codec:"url"`
	Commit string `codec:"commit,omitempty"`
	Branch string `codec:"branch,omitempty"`
	Tag    string `codec:"tag,omitempty"`
}

func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(k.Kind)
	sb.WriteByte(':')
	sb.WriteString(k.URL)
	switch {
	case k.Commit != "":
		sb.WriteString("@commit=" + k.Commit)
	case k.Branch != "":
		sb.WriteString("@branch=" + k.Branch)
	case k.Tag != "":
		sb.WriteString("@tag=" + k.Tag)
	}
	return sb.String()
}

/*
	Item is one entry in the cache: a fetched path and what we know of it.
*/
type Item struct {
	Key  Key    `codec:"key"`
	Path string `codec:"path"`
	Size int64  `codec:"size"` // sum of regular file sizes, as of the last fetch or refresh.
	ID   int    `codec:"id"`
}

type state struct {
	Items  []Item `codec:"items"` // oldest first.
	NextID int    `codec:"next_id"`
}

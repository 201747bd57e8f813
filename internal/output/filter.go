package output

import (
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
)

// Filter selects which records a console sink shows. Empty lists match all.
type Filter struct {
	Levels  []string
	Origins []string
}

type compiledFilter struct {
	levels  map[console.Level]bool
	origins map[console.Origin]bool
}

func (f Filter) compile() compiledFilter {
	var c compiledFilter
	if len(f.Levels) > 0 {
		c.levels = make(map[console.Level]bool)
		for _, l := range f.Levels {
			c.levels[console.Level(strings.ToLower(strings.TrimSpace(l)))] = true
		}
	}
	if len(f.Origins) > 0 {
		c.origins = make(map[console.Origin]bool)
		for _, o := range f.Origins {
			c.origins[console.Origin(strings.ToLower(strings.TrimSpace(o)))] = true
		}
	}
	return c
}

// match reports whether v passes. Values other than records always pass.
func (c compiledFilter) match(v any) bool {
	var r Record
	switch t := v.(type) {
	case Record:
		r = t
	case Event:
		if t.Record == nil {
			return true
		}
		r = *t.Record
	default:
		return true
	}
	if c.levels != nil && !c.levels[r.Level] {
		return false
	}
	if c.origins != nil && !c.origins[r.Origin] {
		return false
	}
	return true
}

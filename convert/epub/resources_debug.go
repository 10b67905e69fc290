package epub

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"mdepub/utils/debug"
)

// Dump returns readable list of resources for debug report.
func (t *ResourceTable) Dump() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	tw := debug.NewTreeWriter()
	tw.Line(0, "Resources: %d", len(t.entries))
	tw.Line(1, "Directory: %s", t.dir)
	keys := slices.Collect(maps.Keys(t.entries))
	sort.Sort(natural.StringSlice(keys))
	var explicit []string
	for _, k := range keys {
		e := t.entries[k]
		tw.Line(1, "Resource[%q] id[%q] href[%q] mime[%q] size[%d] refs[%d]", k, e.ID, e.Href, e.MediaType, len(e.Data), e.Refs)
		if e.Width > 0 && e.Height > 0 {
			tw.Line(2, "dimensions %dx%d", e.Width, e.Height)
		}
		if e.Explicit {
			explicit = append(explicit, k)
		}
	}
	tw.List(1, "Explicit", explicit)
	return tw.String()
}

package calendar

import "github.com/postdeck/postdeck/pkg/models"

// Filter is a pure derived view over a day bucket. It holds no state with
// respect to mutations; applying it never touches the index.
type Filter struct {
	Platform string
	Status   models.ItemStatus
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Platform == "" && f.Status == ""
}

// Matches reports whether a single item passes the filter.
func (f Filter) Matches(item models.ScheduledItem) bool {
	if f.Platform != "" && item.Snapshot.Platform != f.Platform {
		return false
	}

	if f.Status != "" && item.Status != f.Status {
		return false
	}

	return true
}

// Apply returns the items passing the filter, preserving order. The input
// slice is never modified.
func (f Filter) Apply(items []models.ScheduledItem) []models.ScheduledItem {
	if f.IsZero() {
		return items
	}

	out := make([]models.ScheduledItem, 0, len(items))

	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}

	return out
}

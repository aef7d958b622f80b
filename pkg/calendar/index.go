package calendar

import (
	"sort"
	"time"

	"github.com/postdeck/postdeck/pkg/models"
)

// Index maps calendar days to ordered buckets of scheduled items. Buckets are
// ordered by ScheduledAt ascending. Days with zero items may exist as empty
// buckets or be absent; lookups handle both. An item belongs to exactly one
// bucket at any observable point.
//
// Index is not safe for concurrent use. The coordinator owns the only
// instance and serializes access to it.
type Index struct {
	loc     *time.Location
	buckets map[Day][]models.ScheduledItem
}

// NewIndex creates an empty index bucketing timestamps in loc.
func NewIndex(loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}

	return &Index{
		loc:     loc,
		buckets: make(map[Day][]models.ScheduledItem),
	}
}

// Location returns the location day buckets are keyed in.
func (x *Index) Location() *time.Location {
	return x.loc
}

// DayOf returns the bucket key for a timestamp.
func (x *Index) DayOf(t time.Time) Day {
	return DayOf(t, x.loc)
}

// ItemsForDay returns a copy of the bucket for day, or an empty slice if the
// bucket is absent. Never fails.
func (x *Index) ItemsForDay(day Day) []models.ScheduledItem {
	bucket := x.buckets[day]
	out := make([]models.ScheduledItem, len(bucket))
	copy(out, bucket)

	return out
}

// InsertItem inserts item into the bucket for day, creating the bucket if
// absent and keeping ascending time order.
func (x *Index) InsertItem(day Day, item models.ScheduledItem) {
	x.buckets[day] = insertOrdered(x.buckets[day], item)
}

// MoveItem removes id from fromDay's bucket and inserts updated into toDay's
// bucket as one transition. If fromDay equals toDay the item is re-sorted in
// place. Returns ErrItemNotFound, without touching any bucket, when id is not
// present in fromDay.
func (x *Index) MoveItem(id models.ItemID, fromDay, toDay Day, updated models.ScheduledItem) error {
	from, idx := x.find(fromDay, id)
	if idx < 0 {
		return ErrItemNotFound
	}

	from = append(from[:idx], from[idx+1:]...)

	if fromDay == toDay {
		x.buckets[fromDay] = insertOrdered(from, updated)

		return nil
	}

	x.buckets[fromDay] = from
	x.buckets[toDay] = insertOrdered(x.buckets[toDay], updated)

	return nil
}

// ReplaceItem replaces the item matching tempID within day's bucket with
// realItem, re-sorting by time. A missing match is a silent no-op: the
// optimistic item may already have been rolled back.
func (x *Index) ReplaceItem(day Day, tempID models.ItemID, realItem models.ScheduledItem) {
	bucket, idx := x.find(day, tempID)
	if idx < 0 {
		return
	}

	bucket = append(bucket[:idx], bucket[idx+1:]...)
	x.buckets[day] = insertOrdered(bucket, realItem)
}

// RemoveItem removes id from day's bucket if present.
func (x *Index) RemoveItem(day Day, id models.ItemID) {
	bucket, idx := x.find(day, id)
	if idx < 0 {
		return
	}

	x.buckets[day] = append(bucket[:idx], bucket[idx+1:]...)
}

// ReplaceAll rebuilds the index from a server listing.
func (x *Index) ReplaceAll(items []models.ScheduledItem) {
	x.buckets = make(map[Day][]models.ScheduledItem, len(x.buckets))
	for _, item := range items {
		x.InsertItem(x.DayOf(item.ScheduledAt), item)
	}
}

// Days returns every day that currently has a bucket, ordered ascending.
// Empty buckets are included so the UI can render "no posts" days it has
// already touched.
func (x *Index) Days() []Day {
	days := make([]Day, 0, len(x.buckets))
	for day := range x.buckets {
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return days
}

// Len returns the total number of items across all buckets.
func (x *Index) Len() int {
	total := 0
	for _, bucket := range x.buckets {
		total += len(bucket)
	}

	return total
}

// Snapshot captures the state of a set of day buckets so a speculative
// mutation can be rolled back. Absent buckets are recorded as absent and
// stay absent after a restore.
type Snapshot struct {
	days []daySnapshot
}

type daySnapshot struct {
	day     Day
	items   []models.ScheduledItem
	existed bool
}

// SnapshotDays captures the listed buckets. Duplicate days are captured once.
func (x *Index) SnapshotDays(days ...Day) Snapshot {
	snap := Snapshot{days: make([]daySnapshot, 0, len(days))}
	seen := make(map[Day]bool, len(days))

	for _, day := range days {
		if seen[day] {
			continue
		}

		seen[day] = true

		bucket, existed := x.buckets[day]
		items := make([]models.ScheduledItem, len(bucket))
		copy(items, bucket)

		snap.days = append(snap.days, daySnapshot{day: day, items: items, existed: existed})
	}

	return snap
}

// RestoreDays restores every bucket captured in snap to its captured state,
// discarding whatever the buckets hold now.
func (x *Index) RestoreDays(snap Snapshot) {
	for _, ds := range snap.days {
		if !ds.existed {
			delete(x.buckets, ds.day)

			continue
		}

		items := make([]models.ScheduledItem, len(ds.items))
		copy(items, ds.items)
		x.buckets[ds.day] = items
	}
}

func (x *Index) find(day Day, id models.ItemID) ([]models.ScheduledItem, int) {
	bucket := x.buckets[day]
	for i, item := range bucket {
		if item.ID.Equal(id) {
			return bucket, i
		}
	}

	return bucket, -1
}

func insertOrdered(bucket []models.ScheduledItem, item models.ScheduledItem) []models.ScheduledItem {
	idx := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].ScheduledAt.After(item.ScheduledAt)
	})

	bucket = append(bucket, models.ScheduledItem{})
	copy(bucket[idx+1:], bucket[idx:])
	bucket[idx] = item

	return bucket
}

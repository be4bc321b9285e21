package lifecycle

import (
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"leaflog/internal/model"
)

// CurrentAttempt derives the attempt number a plant is on from its event
// log: the maximum attempt tagged on any event, 1 for an empty log. It must
// always be recomputed from the persisted log, never cached.
func CurrentAttempt(events []model.Event) int {
	attempt := 1
	for _, e := range events {
		if e.Attempt > attempt {
			attempt = e.Attempt
		}
	}
	return attempt
}

// SortEvents orders the log newest-first. Exact date ties are broken by
// event id descending, which is deterministic and, because ids are
// capture-timestamp-based, approximates insertion recency.
func SortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date > events[j].Date
		}
		return events[i].ID > events[j].ID
	})
}

// NewEventID returns a millisecond-timestamp id, bumped past any id already
// present in the log so two events captured in the same millisecond cannot
// collide.
func NewEventID(events []model.Event, at time.Time) string {
	ms := at.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if !hasEventID(events, id) {
			return id
		}
		ms++
	}
}

func hasEventID(events []model.Event, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func eventsWithout(events []model.Event, id string) (out []model.Event, removed bool) {
	out = make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.ID == id {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out, removed
}

func galleryContains(gallery []model.GalleryImage, imageURL string) bool {
	for _, g := range gallery {
		if g.ImageURL == imageURL {
			return true
		}
	}
	return false
}

// recomputeLastWatered projects the most recent watering event onto the
// denormalized LastWatered field, zeroing it when no watering remains.
func recomputeLastWatered(p *model.Plant) {
	var last primitive.DateTime
	for _, e := range p.Events {
		if e.Type == model.EventWatering && e.Date > last {
			last = e.Date
		}
	}
	p.LastWatered = last
}

// refreshImageFromGallery re-derives the primary image from the newest
// gallery entry. Gallery entries are history and are never removed with
// their photo event, so the head is always the latest surviving photo.
func refreshImageFromGallery(p *model.Plant) {
	if len(p.Gallery) == 0 {
		return
	}
	sort.SliceStable(p.Gallery, func(i, j int) bool {
		return p.Gallery[i].Date > p.Gallery[j].Date
	})
	p.Image = p.Gallery[0].ImageURL
	p.LastPhotoUpdate = p.Gallery[0].Date
}

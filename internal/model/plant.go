package model

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusAlive     Status = "alive"
	StatusDeceased  Status = "deceased"
	StatusExchanged Status = "exchanged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAlive, StatusDeceased, StatusExchanged:
		return true
	}
	return false
}

// Ended reports whether the status closes an attempt.
func (s Status) Ended() bool {
	return s == StatusDeceased || s == StatusExchanged
}

type StartType string

const (
	StartWholePlant StartType = "plant"
	StartCutting    StartType = "cutting"
	StartDivision   StartType = "division"
	StartSeed       StartType = "seed"
)

func (t StartType) Valid() bool {
	switch t {
	case StartWholePlant, StartCutting, StartDivision, StartSeed:
		return true
	}
	return false
}

type Location string

const (
	LocationIndoor  Location = "indoor"
	LocationOutdoor Location = "outdoor"
)

func (l Location) Valid() bool {
	return l == LocationIndoor || l == LocationOutdoor
}

type AcquisitionType string

const (
	AcquisitionPurchased AcquisitionType = "purchased"
	AcquisitionGifted    AcquisitionType = "gifted"
	AcquisitionExchanged AcquisitionType = "exchanged"
	AcquisitionRescued   AcquisitionType = "rescued"
)

func (t AcquisitionType) Valid() bool {
	switch t {
	case AcquisitionPurchased, AcquisitionGifted, AcquisitionExchanged, AcquisitionRescued:
		return true
	}
	return false
}

// GalleryImage is one photo in a plant's gallery, ordered by date descending.
type GalleryImage struct {
	ImageURL string             `bson:"image_url" json:"image_url"`
	Date     primitive.DateTime `bson:"date" json:"date"`
	Attempt  int                `bson:"attempt" json:"attempt"`
}

// Plant is one document per physical specimen. The event log is embedded so
// a plant and its history are always persisted and deleted in one call.
type Plant struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"plant_id"`
	OwnerID         primitive.ObjectID `bson:"owner_id" json:"-"`
	Name            string             `bson:"name" json:"name"`
	Type            string             `bson:"type,omitempty" json:"type,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          Status             `bson:"status" json:"status"`
	Date            primitive.DateTime `bson:"date" json:"date"`
	StartType       StartType          `bson:"start_type" json:"start_type"`
	Location        Location           `bson:"location" json:"location"`
	AcquisitionType AcquisitionType    `bson:"acquisition_type" json:"acquisition_type"`
	Price           float64            `bson:"price,omitempty" json:"price,omitempty"`
	GiftFrom        string             `bson:"gift_from,omitempty" json:"gift_from,omitempty"`
	ExchangeSource  string             `bson:"exchange_source,omitempty" json:"exchange_source,omitempty"`
	RescuedFrom     string             `bson:"rescued_from,omitempty" json:"rescued_from,omitempty"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
	Gallery         []GalleryImage     `bson:"gallery" json:"gallery"`
	LastPhotoUpdate primitive.DateTime `bson:"last_photo_update,omitempty" json:"last_photo_update,omitempty"`
	LastWatered     primitive.DateTime `bson:"last_watered,omitempty" json:"last_watered,omitempty"`
	Events          []Event            `bson:"events" json:"events"`
	CreatedAt       primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt       primitive.DateTime `bson:"updated_at" json:"-"`
}

// StripProvenance zeroes every acquisition field that does not belong to the
// plant's acquisition type, so stale cross-type data never reaches the store.
func (p *Plant) StripProvenance() {
	if p.AcquisitionType != AcquisitionPurchased {
		p.Price = 0
	}
	if p.AcquisitionType != AcquisitionGifted {
		p.GiftFrom = ""
	}
	if p.AcquisitionType != AcquisitionExchanged {
		p.ExchangeSource = ""
	}
	if p.AcquisitionType != AcquisitionRescued {
		p.RescuedFrom = ""
	}
}

// EffectiveGallery is the gallery shown to a user: the stored gallery plus
// the primary image if it is not already present, deduplicated by URL and
// sorted by date descending. Legacy documents without a gallery derive one
// from their photo events.
func (p Plant) EffectiveGallery() []GalleryImage {
	gallery := p.Gallery
	if len(gallery) == 0 {
		gallery = galleryFromEvents(p.Events)
	}

	var out []GalleryImage
	seen := map[string]bool{}
	for _, g := range gallery {
		if g.ImageURL == "" || seen[g.ImageURL] {
			continue
		}
		seen[g.ImageURL] = true
		out = append(out, g)
	}
	if p.Image != "" && !seen[p.Image] {
		out = append(out, GalleryImage{
			ImageURL: p.Image,
			Date:     p.LastPhotoUpdate,
			Attempt:  1,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// galleryFromEvents rebuilds gallery entries from photo events whose note
// carries the image itself, the way one legacy document shape stored them.
func galleryFromEvents(events []Event) []GalleryImage {
	var out []GalleryImage
	for _, e := range events {
		if e.Type != EventPhoto {
			continue
		}
		if !strings.HasPrefix(e.Note, "data:") && !strings.HasPrefix(e.Note, "http") {
			continue
		}
		out = append(out, GalleryImage{
			ImageURL: e.Note,
			Date:     e.Date,
			Attempt:  e.Attempt,
		})
	}
	return out
}

// DaysSinceWatered returns the whole days elapsed since the last watering
// event, or -1 if the plant was never watered.
func (p Plant) DaysSinceWatered(now time.Time) int {
	if p.LastWatered == 0 {
		return -1
	}
	d := now.Sub(p.LastWatered.Time())
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

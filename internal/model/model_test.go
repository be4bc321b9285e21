package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnumsValid(t *testing.T) {
	assert.True(t, EventWatering.Valid())
	assert.True(t, EventCuttingTaken.Valid())
	assert.False(t, EventType("party").Valid())

	assert.True(t, StatusAlive.Valid())
	assert.False(t, Status("zombie").Valid())
	assert.False(t, StatusAlive.Ended())
	assert.True(t, StatusDeceased.Ended())
	assert.True(t, StatusExchanged.Ended())

	assert.True(t, StartDivision.Valid())
	assert.False(t, StartType("spore").Valid())

	assert.True(t, LocationOutdoor.Valid())
	assert.False(t, Location("greenhouse").Valid())

	assert.True(t, AcquisitionRescued.Valid())
	assert.False(t, AcquisitionType("stolen").Valid())
}

func TestStripProvenance(t *testing.T) {
	p := Plant{
		AcquisitionType: AcquisitionPurchased,
		Price:           15,
		GiftFrom:        "Ana",
		ExchangeSource:  "plant swap",
		RescuedFrom:     "the street",
	}
	p.StripProvenance()
	assert.Equal(t, 15.0, p.Price)
	assert.Empty(t, p.GiftFrom)
	assert.Empty(t, p.ExchangeSource)
	assert.Empty(t, p.RescuedFrom)

	p.AcquisitionType = AcquisitionExchanged
	p.ExchangeSource = "plant swap"
	p.StripProvenance()
	assert.Zero(t, p.Price)
	assert.Equal(t, "plant swap", p.ExchangeSource)
}

func dt(s string) primitive.DateTime {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return primitive.NewDateTimeFromTime(t)
}

func TestEffectiveGallery(t *testing.T) {
	p := Plant{
		Image:           "http://img/c.jpg",
		LastPhotoUpdate: dt("2024-03-01"),
		Gallery: []GalleryImage{
			{ImageURL: "http://img/a.jpg", Date: dt("2024-01-01"), Attempt: 1},
			{ImageURL: "http://img/b.jpg", Date: dt("2024-02-01"), Attempt: 1},
			{ImageURL: "http://img/a.jpg", Date: dt("2024-01-15"), Attempt: 1},
			{ImageURL: "", Date: dt("2024-01-20")},
		},
	}
	g := p.EffectiveGallery()
	require.Len(t, g, 3, "duplicates and empty URLs are dropped, primary image is merged in")
	assert.Equal(t, "http://img/c.jpg", g[0].ImageURL, "sorted by date descending")
	assert.Equal(t, "http://img/b.jpg", g[1].ImageURL)
	assert.Equal(t, "http://img/a.jpg", g[2].ImageURL)
}

func TestEffectiveGalleryPrimaryAlreadyPresent(t *testing.T) {
	p := Plant{
		Image: "http://img/a.jpg",
		Gallery: []GalleryImage{
			{ImageURL: "http://img/a.jpg", Date: dt("2024-01-01")},
		},
	}
	assert.Len(t, p.EffectiveGallery(), 1)
}

func TestEffectiveGalleryLegacyDocuments(t *testing.T) {
	p := Plant{
		Events: []Event{
			{Type: EventPhoto, Note: "data:image/jpeg;base64,Zm9v", Date: dt("2024-02-01"), Attempt: 2},
			{Type: EventPhoto, Note: "looking good", Date: dt("2024-01-20"), Attempt: 1},
			{Type: EventWatering, Date: dt("2024-01-10"), Attempt: 1},
			{Type: EventPhoto, Note: "http://img/old.jpg", Date: dt("2024-01-05"), Attempt: 1},
		},
	}
	g := p.EffectiveGallery()
	require.Len(t, g, 2, "only photo events carrying an image derive entries")
	assert.Equal(t, "data:image/jpeg;base64,Zm9v", g[0].ImageURL)
	assert.Equal(t, 2, g[0].Attempt)
	assert.Equal(t, "http://img/old.jpg", g[1].ImageURL)
}

func TestEffectiveGalleryEmpty(t *testing.T) {
	assert.Empty(t, Plant{}.EffectiveGallery())
}

func TestDaysSinceWatered(t *testing.T) {
	now, err := time.Parse("2006-01-02", "2024-01-10")
	require.NoError(t, err)

	assert.Equal(t, -1, Plant{}.DaysSinceWatered(now), "never watered")
	assert.Equal(t, 8, Plant{LastWatered: dt("2024-01-02")}.DaysSinceWatered(now))
	assert.Equal(t, 0, Plant{LastWatered: dt("2024-01-10")}.DaysSinceWatered(now))
	assert.Equal(t, 0, Plant{LastWatered: dt("2024-01-12")}.DaysSinceWatered(now), "future dates clamp to 0")
}

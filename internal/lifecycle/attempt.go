package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"leaflog/internal/model"
)

type NewAttemptInput struct {
	Date            time.Time
	StartType       model.StartType
	Location        model.Location
	AcquisitionType model.AcquisitionType
	Price           float64
	GiftFrom        string
	ExchangeSource  string
	RescuedFrom     string

	// EndStatus is the terminal label of the attempt being closed, deceased
	// when unset.
	EndStatus model.Status
	EndNote   string
}

// StartNewAttempt closes the plant's current attempt and opens the next
// one: a deceased event dated now tags the closing attempt, a revived event
// dated in.Date tags the new one, the previous attempt's acquisition data
// is folded into a free-text notes snapshot (the only record of it that
// survives) and the plant's mutable fields are overwritten to describe the
// new attempt. Everything is persisted in a single update.
func (s Store) StartNewAttempt(ctx context.Context, plantID string, in NewAttemptInput) (model.Plant, error) {
	if in.Date.IsZero() {
		return model.Plant{}, errors.Wrap(ErrValidation, "a date for the new attempt is required")
	}
	if !in.StartType.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid start type: %q", in.StartType)
	}
	if !in.Location.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid location: %q", in.Location)
	}
	if !in.AcquisitionType.Valid() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "invalid acquisition type: %q", in.AcquisitionType)
	}
	end := in.EndStatus
	if end == "" {
		end = model.StatusDeceased
	}
	if !end.Ended() {
		return model.Plant{}, errors.Wrapf(ErrValidation, "an attempt cannot end with status: %q", end)
	}

	p, err := s.DB.PlantFindOne(ctx, s.OwnerID, plantID)
	if err != nil {
		return model.Plant{}, wrapStore(err, "loading plant "+plantID)
	}

	closing := CurrentAttempt(p.Events)
	now := s.now()

	// The two synthesized events may push the log past its bound; refusing
	// a revival here would wedge the plant, so the bound is not checked.
	endNote := in.EndNote
	if endNote == "" {
		endNote = fmt.Sprintf("Fin del intento #%d (%s)", closing, end)
	}
	ended := model.Event{
		ID:      NewEventID(p.Events, now),
		Type:    model.EventDeceased,
		Date:    primitive.NewDateTimeFromTime(now),
		Note:    endNote,
		Attempt: closing,
	}
	p.Events = append([]model.Event{ended}, p.Events...)

	revived := model.Event{
		ID:      NewEventID(p.Events, now),
		Type:    model.EventRevived,
		Date:    primitive.NewDateTimeFromTime(in.Date),
		Note:    fmt.Sprintf("Inicio del intento #%d", closing+1),
		Attempt: closing + 1,
	}
	p.Events = append([]model.Event{revived}, p.Events...)
	SortEvents(p.Events)

	// Snapshot before the fields below are overwritten; the old notes value
	// is not retained anywhere else.
	p.Notes = attemptSummary(p, closing, end)

	p.Status = model.StatusAlive
	p.Date = primitive.NewDateTimeFromTime(in.Date)
	p.StartType = in.StartType
	p.Location = in.Location
	p.AcquisitionType = in.AcquisitionType
	p.Price = in.Price
	p.GiftFrom = in.GiftFrom
	p.ExchangeSource = in.ExchangeSource
	p.RescuedFrom = in.RescuedFrom
	p.StripProvenance()
	recomputeLastWatered(&p)

	if err := s.DB.PlantLifecycleUpdate(ctx, p); err != nil {
		return model.Plant{}, wrapStore(err, "saving plant "+plantID)
	}
	return p, nil
}

// attemptSummary renders the human-readable snapshot of the attempt being
// closed. Lossy: only this one free-text block of history is retained.
func attemptSummary(p model.Plant, attempt int, end model.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intento anterior (#%d)\n", attempt)
	fmt.Fprintf(&b, "Estado final: %s\n", end)
	fmt.Fprintf(&b, "Adquisición: %s (%s)\n", p.Date.Time().Format("2006-01-02"), provenanceLine(p))
	fmt.Fprintf(&b, "Inicio: %s\n", p.StartType)
	fmt.Fprintf(&b, "Ubicación: %s", p.Location)
	if p.Notes != "" {
		fmt.Fprintf(&b, "\nNotas: %s", p.Notes)
	}
	return b.String()
}

func provenanceLine(p model.Plant) string {
	switch p.AcquisitionType {
	case model.AcquisitionPurchased:
		return fmt.Sprintf("%s, %.2f", p.AcquisitionType, p.Price)
	case model.AcquisitionGifted:
		return fmt.Sprintf("%s, %s", p.AcquisitionType, p.GiftFrom)
	case model.AcquisitionExchanged:
		return fmt.Sprintf("%s, %s", p.AcquisitionType, p.ExchangeSource)
	case model.AcquisitionRescued:
		return fmt.Sprintf("%s, %s", p.AcquisitionType, p.RescuedFrom)
	}
	return string(p.AcquisitionType)
}

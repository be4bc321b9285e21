package server

import (
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"net/http"
	"time"

	"leaflog/internal/lifecycle"
	"leaflog/internal/model"
)

// plantJson is the wire shape of a Plant. The gallery is the effective one,
// merged and deduplicated, not the raw stored array.
type plantJson struct {
	model.Plant
	CurrentAttempt   int                  `json:"current_attempt"`
	Gallery          []model.GalleryImage `json:"gallery"`
	DaysSinceWatered int                  `json:"days_since_watered"`
}

func toPlantJson(p model.Plant) plantJson {
	return plantJson{
		Plant:            p,
		CurrentAttempt:   lifecycle.CurrentAttempt(p.Events),
		Gallery:          p.EffectiveGallery(),
		DaysSinceWatered: p.DaysSinceWatered(time.Now()),
	}
}

func (s Server) lifecycleStore(uc userContext) lifecycle.Store {
	return lifecycle.Store{
		DB:                s.DB,
		OwnerID:           uc.user.ID,
		MaxEventsPerPlant: s.MaxEventsPerPlant,
	}
}

func (s Server) writeLifecycleError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		s.Logger.Debugf("%s: Validation error, err: %v", op, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, lifecycle.ErrEventLogFull):
		s.Logger.Debugf("%s: Event log full, err: %v", op, err)
		http.Error(w, "Event log is full", http.StatusUnprocessableEntity)
	case errors.Is(err, lifecycle.ErrNotFound):
		s.Logger.Debugf("%s: Plant not found, err: %v", op, err)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		s.Logger.Errorf("%s: Store unavailable, err: %v", op, err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	default:
		s.Logger.Errorf("%s: err: %v", op, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s Server) publishPlantsChanged(r *http.Request, ownerID primitive.ObjectID) {
	if s.Feed == nil {
		return
	}
	if err := s.Feed.PublishPlantsChanged(r.Context(), ownerID.Hex()); err != nil {
		s.Logger.Errorf("Error publishing plants changed for UserID: %s, err: %v", ownerID.Hex(), err)
	}
}

func (s Server) plantAdd() http.HandlerFunc {
	type request struct {
		Name            string    `json:"name"`
		Type            string    `json:"type"`
		Notes           string    `json:"notes"`
		Date            time.Time `json:"date"`
		StartType       string    `json:"start_type"`
		Location        string    `json:"location"`
		AcquisitionType string    `json:"acquisition_type"`
		Price           float64   `json:"price"`
		GiftFrom        string    `json:"gift_from"`
		ExchangeSource  string    `json:"exchange_source"`
		RescuedFrom     string    `json:"rescued_from"`
		Image           string    `json:"image"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("plantAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		p, err := s.lifecycleStore(uc).CreatePlant(r.Context(), lifecycle.CreatePlantInput{
			Name:            req.Name,
			Type:            req.Type,
			Notes:           req.Notes,
			Date:            req.Date,
			StartType:       model.StartType(req.StartType),
			Location:        model.Location(req.Location),
			AcquisitionType: model.AcquisitionType(req.AcquisitionType),
			Price:           req.Price,
			GiftFrom:        req.GiftFrom,
			ExchangeSource:  req.ExchangeSource,
			RescuedFrom:     req.RescuedFrom,
			Image:           req.Image,
		})
		if err != nil {
			s.writeLifecycleError(w, "plantAdd", err)
			return
		}
		s.publishPlantsChanged(r, uc.user.ID)
		s.writeJsonResponse(w, toPlantJson(p), http.StatusCreated)
	}
}

func (s Server) plantGetOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantGetOne: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		plantID := mux.Vars(r)["plantID"]
		p, err := s.DB.PlantFindOne(r.Context(), uc.user.ID, plantID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("plantGetOne: No documents found for Plant with ID: %s, err: %v", plantID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("plantGetOne: Error finding Plant with ID: %s, err: %v", plantID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, toPlantJson(p), http.StatusOK)
	}
}

func (s Server) plantGetAll() http.HandlerFunc {
	type response []plantJson
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantGetAll: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ps, err := s.DB.PlantsFindByOwner(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("plantGetAll: Error getting all Plants for User with ID: %s, err: %v", uc.user.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp := response{}
		for _, p := range ps {
			resp = append(resp, toPlantJson(p))
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) plantRemove() http.HandlerFunc {
	type request struct {
		PlantID string `json:"plant_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantRemove: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("plantRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err = s.lifecycleStore(uc).DeletePlant(r.Context(), req.PlantID); err != nil {
			s.writeLifecycleError(w, "plantRemove", err)
			return
		}
		s.publishPlantsChanged(r, uc.user.ID)
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) plantEventAdd() http.HandlerFunc {
	type request struct {
		PlantID      string    `json:"plant_id"`
		Type         string    `json:"type"`
		Date         time.Time `json:"date"`
		Note         string    `json:"note"`
		ImageData    string    `json:"image_data"`
		StatusChange string    `json:"status_change"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantEventAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("plantEventAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		in := lifecycle.EventInput{
			Type:      model.EventType(req.Type),
			Date:      req.Date,
			Note:      req.Note,
			ImageData: req.ImageData,
		}
		if req.StatusChange != "" {
			status := model.Status(req.StatusChange)
			in.StatusChange = &status
		}
		p, err := s.lifecycleStore(uc).AppendEvent(r.Context(), req.PlantID, in)
		if err != nil {
			s.writeLifecycleError(w, "plantEventAdd", err)
			return
		}
		s.publishPlantsChanged(r, uc.user.ID)
		s.writeJsonResponse(w, toPlantJson(p), http.StatusOK)
	}
}

func (s Server) plantEventRemove() http.HandlerFunc {
	type request struct {
		PlantID string `json:"plant_id"`
		EventID string `json:"event_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantEventRemove: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("plantEventRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		p, err := s.lifecycleStore(uc).RemoveEvent(r.Context(), req.PlantID, req.EventID)
		if err != nil {
			s.writeLifecycleError(w, "plantEventRemove", err)
			return
		}
		s.publishPlantsChanged(r, uc.user.ID)
		s.writeJsonResponse(w, toPlantJson(p), http.StatusOK)
	}
}

func (s Server) plantRevive() http.HandlerFunc {
	type request struct {
		PlantID         string    `json:"plant_id"`
		Date            time.Time `json:"date"`
		StartType       string    `json:"start_type"`
		Location        string    `json:"location"`
		AcquisitionType string    `json:"acquisition_type"`
		Price           float64   `json:"price"`
		GiftFrom        string    `json:"gift_from"`
		ExchangeSource  string    `json:"exchange_source"`
		RescuedFrom     string    `json:"rescued_from"`
		EndStatus       string    `json:"end_status"`
		EndNote         string    `json:"end_note"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("plantRevive: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("plantRevive: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		p, err := s.lifecycleStore(uc).StartNewAttempt(r.Context(), req.PlantID, lifecycle.NewAttemptInput{
			Date:            req.Date,
			StartType:       model.StartType(req.StartType),
			Location:        model.Location(req.Location),
			AcquisitionType: model.AcquisitionType(req.AcquisitionType),
			Price:           req.Price,
			GiftFrom:        req.GiftFrom,
			ExchangeSource:  req.ExchangeSource,
			RescuedFrom:     req.RescuedFrom,
			EndStatus:       model.Status(req.EndStatus),
			EndNote:         req.EndNote,
		})
		if err != nil {
			s.writeLifecycleError(w, "plantRevive", err)
			return
		}
		s.publishPlantsChanged(r, uc.user.ID)
		s.writeJsonResponse(w, toPlantJson(p), http.StatusOK)
	}
}

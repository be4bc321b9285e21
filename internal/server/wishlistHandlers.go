package server

import (
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"net/http"
	"time"

	"leaflog/internal/database"
	"leaflog/internal/lifecycle"
	"leaflog/internal/model"
)

func (s Server) wishlistAdd() http.HandlerFunc {
	type request struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
		Image string `json:"image"`
	}
	type response model.WishlistItem
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("wishlistAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			s.Logger.Debugf("wishlistAdd: Name not supplied, UserID: %s", uc.user.ID.Hex())
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}

		wi := model.WishlistItem{
			OwnerID: uc.user.ID,
			Name:    req.Name,
			Notes:   req.Notes,
			Image:   req.Image,
		}
		id, err := s.DB.WishlistItemInsert(r.Context(), wi)
		if err != nil {
			s.Logger.Errorf("wishlistAdd: Error inserting WishlistItem, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		wi.ID, err = primitive.ObjectIDFromHex(id)
		if err != nil {
			s.Logger.Errorf("wishlistAdd: Error creating ObjectID from hex: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response(wi), http.StatusCreated)
	}
}

func (s Server) wishlistUpdate() http.HandlerFunc {
	type request struct {
		ItemID string `json:"item_id"`
		Name   string `json:"name"`
		Notes  string `json:"notes"`
		Image  string `json:"image"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistUpdate: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("wishlistUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			s.Logger.Debugf("wishlistUpdate: Name not supplied, UserID: %s", uc.user.ID.Hex())
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}

		itemOID, err := primitive.ObjectIDFromHex(req.ItemID)
		if err != nil {
			s.Logger.Debugf("wishlistUpdate: Error creating ObjectID from hex: %s, err: %v", req.ItemID, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		wi := model.WishlistItem{
			ID:      itemOID,
			OwnerID: uc.user.ID,
			Name:    req.Name,
			Notes:   req.Notes,
			Image:   req.Image,
		}
		if err = s.DB.WishlistItemUpdate(r.Context(), wi); err != nil {
			if errors.Is(err, database.ErrNoDocumentsModified) {
				s.Logger.Debugf("wishlistUpdate: WishlistItem not found with ID: %s, err: %v", req.ItemID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("wishlistUpdate: Error updating WishlistItem with ID: %s, err: %v", req.ItemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) wishlistRemove() http.HandlerFunc {
	type request struct {
		ItemID string `json:"item_id"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistRemove: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("wishlistRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err = s.DB.WishlistItemDelete(r.Context(), uc.user.ID, req.ItemID); err != nil {
			s.Logger.Errorf("wishlistRemove: Error deleting WishlistItem with ID: %s, err: %v", req.ItemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) wishlistGetAll() http.HandlerFunc {
	type response []model.WishlistItem
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistGetAll: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		wis, err := s.DB.WishlistItemsFindByOwner(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("wishlistGetAll: Error getting all WishlistItems for User with ID: %s, err: %v", uc.user.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response(wis), http.StatusOK)
	}
}

// wishlistConvert promotes a wishlist item into a real plant: the item's
// name, notes and photo seed the new plant and the item is deleted once the
// plant exists. The item survives if the plant insert fails, so the worst
// failure mode is a duplicate, never a lost item.
func (s Server) wishlistConvert() http.HandlerFunc {
	type request struct {
		Date            time.Time `json:"date"`
		StartType       string    `json:"start_type"`
		Location        string    `json:"location"`
		AcquisitionType string    `json:"acquisition_type"`
		Price           float64   `json:"price"`
		GiftFrom        string    `json:"gift_from"`
		ExchangeSource  string    `json:"exchange_source"`
		RescuedFrom     string    `json:"rescued_from"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistConvert: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("wishlistConvert: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		itemID := mux.Vars(r)["itemID"]
		wi, err := s.DB.WishlistItemFindOne(r.Context(), uc.user.ID, itemID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex) {
				s.Logger.Debugf("wishlistConvert: No documents found for WishlistItem with ID: %s, err: %v", itemID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("wishlistConvert: Error finding WishlistItem with ID: %s, err: %v", itemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		p, err := s.lifecycleStore(uc).CreatePlant(r.Context(), lifecycle.CreatePlantInput{
			Name:            wi.Name,
			Notes:           wi.Notes,
			Image:           wi.Image,
			Date:            req.Date,
			StartType:       model.StartType(req.StartType),
			Location:        model.Location(req.Location),
			AcquisitionType: model.AcquisitionType(req.AcquisitionType),
			Price:           req.Price,
			GiftFrom:        req.GiftFrom,
			ExchangeSource:  req.ExchangeSource,
			RescuedFrom:     req.RescuedFrom,
		})
		if err != nil {
			s.writeLifecycleError(w, "wishlistConvert", err)
			return
		}

		if err = s.DB.WishlistItemDelete(r.Context(), uc.user.ID, itemID); err != nil {
			s.Logger.Errorf("wishlistConvert: Error deleting converted WishlistItem with ID: %s, err: %v", itemID, err)
		}
		s.publishPlantsChanged(r, uc.user.ID)
		s.writeJsonResponse(w, toPlantJson(p), http.StatusCreated)
	}
}

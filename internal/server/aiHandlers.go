package server

import (
	"encoding/json"
	"github.com/pkg/errors"
	"net/http"

	"leaflog/internal/client"
)

func (s Server) aiIdentify() http.HandlerFunc {
	type request struct {
		Image       string `json:"image"`
		Description string `json:"description"`
	}
	type response client.PlantIdentification
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("aiIdentify: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Image == "" {
			s.Logger.Debugf("aiIdentify: Image not supplied")
			http.Error(w, "A photo is required", http.StatusBadRequest)
			return
		}

		ident, err := s.AI.IdentifyPlant(r.Context(), req.Image, req.Description)
		if err != nil {
			if errors.Is(err, client.ErrAIResponseEmpty) {
				s.Logger.Debugf("aiIdentify: Empty AI response, err: %v", err)
				http.Error(w, "Could not identify the plant", http.StatusBadGateway)
				return
			}
			s.Logger.Errorf("aiIdentify: Error identifying plant, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		s.writeJsonResponse(w, response(ident), http.StatusOK)
	}
}

func (s Server) aiDiagnose() http.HandlerFunc {
	type request struct {
		Image string `json:"image"`
		Notes string `json:"notes"`
	}
	type response client.PlantDiagnosis
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("aiDiagnose: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Image == "" {
			s.Logger.Debugf("aiDiagnose: Image not supplied")
			http.Error(w, "A photo is required", http.StatusBadRequest)
			return
		}

		diag, err := s.AI.DiagnosePlant(r.Context(), req.Image, req.Notes)
		if err != nil {
			if errors.Is(err, client.ErrAIResponseEmpty) {
				s.Logger.Debugf("aiDiagnose: Empty AI response, err: %v", err)
				http.Error(w, "Could not diagnose the plant", http.StatusBadGateway)
				return
			}
			s.Logger.Errorf("aiDiagnose: Error diagnosing plant, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		s.writeJsonResponse(w, response(diag), http.StatusOK)
	}
}

func (s Server) aiCrops() http.HandlerFunc {
	type request struct {
		Space string `json:"space"`
	}
	type response client.CropRecommendation
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("aiCrops: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Space == "" {
			s.Logger.Debugf("aiCrops: Space description not supplied")
			http.Error(w, "A description of the growing space is required", http.StatusBadRequest)
			return
		}

		rec, err := s.AI.RecommendCrops(r.Context(), req.Space)
		if err != nil {
			if errors.Is(err, client.ErrAIResponseEmpty) {
				s.Logger.Debugf("aiCrops: Empty AI response, err: %v", err)
				http.Error(w, "Could not recommend crops", http.StatusBadGateway)
				return
			}
			s.Logger.Errorf("aiCrops: Error recommending crops, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		s.writeJsonResponse(w, response(rec), http.StatusOK)
	}
}

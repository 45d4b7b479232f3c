package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"barberdesk/internal/model"
	"barberdesk/internal/storage"
)

type ServiceStore interface {
	ListActive(ctx context.Context) ([]model.Service, error)
	GetByName(ctx context.Context, name string) (model.Service, error)
	Create(ctx context.Context, svc *model.Service) (string, error)
	Update(ctx context.Context, svc *model.Service) error
	Deactivate(ctx context.Context, id string) error
}

type CatalogHandler struct {
	services ServiceStore
	logger   *slog.Logger
}

func NewCatalogHandler(services ServiceStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{services: services, logger: logger}
}

type serviceItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DurationMins int    `json:"duration_mins"`
	Price        string `json:"price"`
	Description  string `json:"description,omitempty"`
}

type upsertServiceRequest struct {
	Name         string `json:"name"`
	DurationMins int    `json:"duration_mins"`
	Price        string `json:"price"`
	Description  string `json:"description"`
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services, err := h.services.ListActive(r.Context())
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, svc := range services {
		items = append(items, serviceItem{
			ID:           svc.ID,
			Name:         svc.Name,
			DurationMins: svc.DurationMins,
			Price:        svc.Price,
			Description:  svc.Description,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req upsertServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMins <= 0 {
		http.Error(w, "name and positive duration_mins required", http.StatusBadRequest)
		return
	}
	if req.Price == "" {
		req.Price = "0"
	}

	if _, err := h.services.GetByName(r.Context(), req.Name); err == nil {
		http.Error(w, "service already exists", http.StatusConflict)
		return
	} else if !storage.IsNotFound(err) {
		http.Error(w, "failed to check service", http.StatusInternalServerError)
		return
	}

	id, err := h.services.Create(r.Context(), &model.Service{
		Name:         req.Name,
		DurationMins: req.DurationMins,
		Price:        req.Price,
		Description:  strings.TrimSpace(req.Description),
		IsActive:     true,
	})
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"service_id": id})
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req upsertServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMins <= 0 {
		http.Error(w, "name and positive duration_mins required", http.StatusBadRequest)
		return
	}

	svc, err := h.services.GetByName(r.Context(), req.Name)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}

	svc.DurationMins = req.DurationMins
	if req.Price != "" {
		svc.Price = req.Price
	}
	if req.Description != "" {
		svc.Description = strings.TrimSpace(req.Description)
	}
	if err := h.services.Update(r.Context(), &svc); err != nil {
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"service_id": svc.ID})
}

package treatments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/treatments", func(tr chi.Router) {
		tr.Post("/", createTreatmentHandler(svc))
		tr.Get("/", listTreatmentsHandler(svc))
		tr.Get("/by-name/{name}", getTreatmentByNameHandler(svc))
		tr.Delete("/by-name/{name}", retireTreatmentHandler(svc))
		tr.Get("/{treatmentID}", getTreatmentHandler(svc))
		tr.Patch("/{treatmentID}", updateTreatmentHandler(svc))
	})
}

type createTreatmentRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	ClientID    string          `json:"client_id"`
}

type treatmentResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      Status          `json:"status"`
	ClientID    string          `json:"client_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// createTreatmentHandler godoc
// @Summary Dar de alta un tratamiento
// @Description Crea un tratamiento. 409 si ya existe uno con el mismo nombre (comparación case-insensitive).
// @Tags treatments
// @Accept json
// @Produce json
// @Param payload body createTreatmentRequest true "Datos del tratamiento; price > 0"
// @Success 201 {object} treatmentResponse
// @Failure 400 {string} string "invalid json / price <= 0 / status inválido"
// @Failure 409 {string} string "nombre duplicado"
// @Router /treatments [post]
func createTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.Create(r.Context(), CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Status:      req.Status,
			ClientID:    req.ClientID,
		})
		if err != nil {
			writeTreatmentError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTreatmentResponse(t))
	}
}

func listTreatmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]treatmentResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTreatmentResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetByID(r.Context(), chi.URLParam(r, "treatmentID"))
		if err != nil {
			writeTreatmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTreatmentResponse(t))
	}
}

func getTreatmentByNameHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetByName(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeTreatmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTreatmentResponse(t))
	}
}

func retireTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Retire(r.Context(), chi.URLParam(r, "name")); err != nil {
			writeTreatmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "treatment retired"})
	}
}

func updateTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		for k := range raw {
			if !MutableFields[k] {
				http.Error(w, "unknown field: "+k, http.StatusBadRequest)
				return
			}
		}

		var req struct {
			Name        *string          `json:"name"`
			Description *string          `json:"description"`
			Price       *decimal.Decimal `json:"price"`
			Status      *string          `json:"status"`
		}
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.Update(r.Context(), chi.URLParam(r, "treatmentID"), UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Status:      req.Status,
		})
		if err != nil {
			writeTreatmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTreatmentResponse(t))
	}
}

func toTreatmentResponse(t Treatment) treatmentResponse {
	return treatmentResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Price:       t.Price,
		Status:      t.Status,
		ClientID:    t.ClientID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func writeTreatmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

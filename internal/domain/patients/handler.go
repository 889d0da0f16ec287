package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Get("/search", searchPatientsHandler(svc))
		pr.Get("/{patientID}", getPatientHandler(svc))
		pr.Patch("/{patientID}", updatePatientHandler(svc))
		pr.Delete("/{patientID}", deletePatientHandler(svc))
	})

	// Mascotas bajo un cliente
	r.Route("/clients/{clientID}/patients", func(pr chi.Router) {
		pr.Post("/", registerPatientHandler(svc))
		pr.Get("/", listPatientsByClientHandler(svc))
		pr.Post("/deceased", markDeceasedHandler(svc))
	})
}

type registerPatientRequest struct {
	Name      string `json:"name"`
	Breed     string `json:"breed"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
}

type patientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed"`
	Age       int       `json:"age"`
	Condition string    `json:"condition,omitempty"`
	Status    Status    `json:"status"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type patientCandidateResponse struct {
	Patient   patientResponse `json:"patient"`
	OwnerName string          `json:"owner_name"`
}

// registerPatientHandler godoc
// @Summary Registrar mascota
// @Description Registra una mascota bajo un cliente existente. 404 si el cliente no existe.
// @Tags patients
// @Accept json
// @Produce json
// @Param clientID path string true "ID del cliente dueño"
// @Param payload body registerPatientRequest true "Datos de la mascota"
// @Success 201 {object} patientResponse
// @Failure 400 {string} string "invalid json / campo faltante"
// @Failure 404 {string} string "client not found"
// @Router /clients/{clientID}/patients [post]
func registerPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Register(r.Context(), chi.URLParam(r, "clientID"), RegisterInput{
			Name:      req.Name,
			Breed:     req.Breed,
			Age:       req.Age,
			Condition: req.Condition,
			Status:    req.Status,
		})
		if err != nil {
			writePatientError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func listPatientsByClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByClient(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]patientResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func searchPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := svc.FindCandidates(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			writePatientError(w, err)
			return
		}

		out := make([]patientCandidateResponse, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, patientCandidateResponse{
				Patient:   toPatientResponse(c.Patient),
				OwnerName: c.OwnerName,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "patientID"))
		if err != nil {
			writePatientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func updatePatientHandler(svc *Service) http.HandlerFunc {
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
			Name      *string `json:"name"`
			Breed     *string `json:"breed"`
			Age       *int    `json:"age"`
			Condition *string `json:"condition"`
		}
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "patientID"), UpdateInput{
			Name:      req.Name,
			Breed:     req.Breed,
			Age:       req.Age,
			Condition: req.Condition,
		})
		if err != nil {
			writePatientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func deletePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "patientID")); err != nil {
			writePatientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "patient deleted"})
	}
}

// markDeceasedHandler godoc
// @Summary Marcar mascota como fallecida
// @Description Marca la mascota (por dueño + nombre) como fallecida. Idempotente: repetir la llamada devuelve 200 con estado Deceased.
// @Tags patients
// @Accept json
// @Produce json
// @Param clientID path string true "ID del cliente dueño"
// @Param payload body object true "{\"name\": \"Firulais\"}"
// @Success 200 {object} patientResponse
// @Failure 404 {string} string "patient not found"
// @Router /clients/{clientID}/patients/deceased [post]
func markDeceasedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.MarkDeceased(r.Context(), chi.URLParam(r, "clientID"), req.Name)
		if err != nil {
			writePatientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func toPatientResponse(p Patient) patientResponse {
	return patientResponse{
		ID:        p.ID,
		Name:      p.Name,
		Breed:     p.Breed,
		Age:       p.Age,
		Condition: p.Condition,
		Status:    p.Status,
		ClientID:  p.ClientID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func writePatientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrClientNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

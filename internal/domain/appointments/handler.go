package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc))
		ar.Get("/", listAppointmentsHandler(svc))
		ar.Get("/find", findAppointmentHandler(svc))
		ar.Get("/{appointmentID}", getAppointmentHandler(svc))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc))
		ar.Post("/{appointmentID}/confirm", confirmAppointmentHandler(svc))
		ar.Post("/{appointmentID}/start", startAppointmentHandler(svc))
		ar.Post("/{appointmentID}/cancel", cancelAppointmentHandler(svc))
		ar.Post("/{appointmentID}/complete", completeAppointmentHandler(svc))
	})
}

type createAppointmentRequest struct {
	ScheduledAt string `json:"scheduled_at"` // RFC3339
	Description string `json:"description"`
	Status      string `json:"status"`
	PatientID   string `json:"patient_id"`
	ClientID    string `json:"client_id"`
	TreatmentID string `json:"treatment_id"`
	// Vía de escape documentada para cargas masivas de confianza:
	// salta la regla de no-duplicado.
	SkipDuplicateCheck bool `json:"skip_duplicate_check"`
}

type appointmentResponse struct {
	ID            string         `json:"id"`
	ScheduledAt   time.Time      `json:"scheduled_at"`
	Description   string         `json:"description"`
	Status        Status         `json:"status"`
	PatientID     string         `json:"patient_id"`
	ClientID      string         `json:"client_id"`
	TreatmentID   string         `json:"treatment_id"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type listAppointmentsResponse struct {
	Total int                   `json:"total"`
	Items []appointmentResponse `json:"items"`
}

// createAppointmentHandler godoc
// @Summary Registrar cita
// @Description Crea una cita enlazando cliente, mascota y tratamiento. Una tupla idéntica (scheduled_at, description, patient, client, treatment) se rechaza con 409 salvo que skip_duplicate_check sea true.
// @Tags appointments
// @Accept json
// @Produce json
// @Param payload body createAppointmentRequest true "Datos de la cita; scheduled_at en RFC3339"
// @Success 201 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / campo faltante / status inválido"
// @Failure 409 {string} string "slot duplicado"
// @Router /appointments [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var scheduledAt time.Time
		if req.ScheduledAt != "" {
			t, err := time.Parse(time.RFC3339, req.ScheduledAt)
			if err != nil {
				http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
				return
			}
			scheduledAt = t
		}

		a, err := svc.Create(r.Context(), CreateInput{
			ScheduledAt: scheduledAt,
			Description: req.Description,
			Status:      req.Status,
			PatientID:   req.PatientID,
			ClientID:    req.ClientID,
			TreatmentID: req.TreatmentID,
		}, !req.SkipDuplicateCheck)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar citas
// @Description Lista todas las citas, con filtro opcional por estado. Un filtro fuera del enum devuelve 400. No se impone orden.
// @Tags appointments
// @Produce json
// @Param status query string false "Pending | Confirmed | InProgress | Completed | Cancelled"
// @Success 200 {object} listAppointmentsResponse
// @Failure 400 {string} string "filtro de estado inválido"
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}

		items := make([]appointmentResponse, 0, len(res.Items))
		for _, a := range res.Items {
			items = append(items, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, listAppointmentsResponse{Total: res.Total, Items: items})
	}
}

func findAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Find(r.Context(),
			r.URL.Query().Get("patient_id"),
			r.URL.Query().Get("client_id"),
		)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func updateAppointmentHandler(svc *Service) http.HandlerFunc {
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
			ScheduledAt *string `json:"scheduled_at"`
			Description *string `json:"description"`
			TreatmentID *string `json:"treatment_id"`
		}
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var in UpdateInput
		if req.ScheduledAt != nil {
			t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
			if err != nil {
				http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.ScheduledAt = &t
		}
		in.Description = req.Description
		in.TreatmentID = req.TreatmentID

		a, err := svc.Update(r.Context(), chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func confirmAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Confirm(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func startAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Start(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func cancelAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Cancel(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// completeAppointmentHandler godoc
// @Summary Completar cita
// @Description Valida el método de pago (Cash, Card, DigitalWallet, BankTransfer), lo registra y pasa la cita a Completed. 409 si la cita ya está en un estado terminal.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body object true "{\"payment_method\": \"Card\"}"
// @Success 200 {object} appointmentResponse
// @Failure 400 {string} string "método de pago inválido"
// @Failure 404 {string} string "appointment not found"
// @Failure 409 {string} string "estado terminal"
// @Router /appointments/{appointmentID}/complete [post]
func completeAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PaymentMethod string `json:"payment_method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Complete(r.Context(), chi.URLParam(r, "appointmentID"), req.PaymentMethod)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:            a.ID,
		ScheduledAt:   a.ScheduledAt,
		Description:   a.Description,
		Status:        a.Status,
		PatientID:     a.PatientID,
		ClientID:      a.ClientID,
		TreatmentID:   a.TreatmentID,
		PaymentMethod: a.PaymentMethod,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func writeAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidState):
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

package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/billing/invoices/{treatmentID}", func(br chi.Router) {
		br.Get("/", getInvoiceHandler(svc))
		br.Get("/pdf", getInvoicePDFHandler(svc))
	})
}

type invoiceResponse struct {
	Client struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		NationalID string `json:"national_id"`
		Address    string `json:"address"`
		Phone      string `json:"phone"`
	} `json:"client"`
	Patient struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Breed  string `json:"breed"`
		Status string `json:"status"`
	} `json:"patient"`
	Appointment struct {
		ID            string    `json:"id"`
		ScheduledAt   time.Time `json:"scheduled_at"`
		Description   string    `json:"description"`
		Status        string    `json:"status"`
		PaymentMethod *string   `json:"payment_method,omitempty"`
	} `json:"appointment"`
	Treatment struct {
		ID     string          `json:"id"`
		Name   string          `json:"name"`
		Price  decimal.Decimal `json:"price"`
		Status string          `json:"status"`
	} `json:"treatment"`
	Total              decimal.Decimal `json:"total"`
	TreatmentCompleted bool            `json:"treatment_completed"`
}

// getInvoiceHandler godoc
// @Summary Datos de factura
// @Description Arma el snapshot de cuatro entidades (cliente, mascota, cita, tratamiento) para el tratamiento dado. Los 404 distinguen qué pieza falta.
// @Tags billing
// @Produce json
// @Param treatmentID path string true "ID del tratamiento"
// @Success 200 {object} invoiceResponse
// @Failure 404 {string} string "treatment not found / appointment not found for treatment / client or patient not found"
// @Router /billing/invoices/{treatmentID} [get]
func getInvoiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.AssembleInvoice(r.Context(), chi.URLParam(r, "treatmentID"))
		if err != nil {
			writeBillingError(w, err)
			return
		}

		completed, err := svc.ValidateCompleted(snap.Treatment)
		if err != nil && !errors.Is(err, ErrMalformedTreatment) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var resp invoiceResponse
		resp.Client.ID = snap.Client.ID
		resp.Client.Name = snap.Client.Name
		resp.Client.NationalID = snap.Client.NationalID
		resp.Client.Address = snap.Client.Address
		resp.Client.Phone = snap.Client.Phone
		resp.Patient.ID = snap.Patient.ID
		resp.Patient.Name = snap.Patient.Name
		resp.Patient.Breed = snap.Patient.Breed
		resp.Patient.Status = string(snap.Patient.Status)
		resp.Appointment.ID = snap.Appointment.ID
		resp.Appointment.ScheduledAt = snap.Appointment.ScheduledAt
		resp.Appointment.Description = snap.Appointment.Description
		resp.Appointment.Status = string(snap.Appointment.Status)
		if snap.Appointment.PaymentMethod != nil {
			pm := string(*snap.Appointment.PaymentMethod)
			resp.Appointment.PaymentMethod = &pm
		}
		resp.Treatment.ID = snap.Treatment.ID
		resp.Treatment.Name = snap.Treatment.Name
		resp.Treatment.Price = snap.Treatment.Price
		resp.Treatment.Status = string(snap.Treatment.Status)
		resp.Total = svc.Total(snap)
		resp.TreatmentCompleted = completed

		writeJSON(w, http.StatusOK, resp)
	}
}

func getInvoicePDFHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.AssembleInvoice(r.Context(), chi.URLParam(r, "treatmentID"))
		if err != nil {
			writeBillingError(w, err)
			return
		}

		pdf, err := RenderPDF(snap)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

func writeBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrTreatmentNotFound),
		errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, ErrPartiesNotFound):
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

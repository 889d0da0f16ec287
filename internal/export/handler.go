package export

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/exports", func(r chi.Router) {
		r.Post("/", exportAllHandler(svc))
		r.Get("/clients", exportClientsHandler(svc))
		r.Get("/patients", exportPatientsHandler(svc))
		r.Get("/treatments", exportTreatmentsHandler(svc))
		r.Get("/appointments", exportAppointmentsHandler(svc))
	})
	r.Post("/imports/clients", importClientsHandler(svc))
}

// exportAllHandler vuelca cada tabla a su archivo JSON en disco.
// @Summary  Exportar todas las tablas a archivos JSON
// @Tags     exports
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /exports [post]
func exportAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := svc.ExportAll(r.Context())
		if err != nil {
			writeExportError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"files": files})
	}
}

func exportClientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := svc.ExportClients(r.Context(), w); err != nil {
			writeExportError(w, err)
		}
	}
}

func exportPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := svc.ExportPatients(r.Context(), w); err != nil {
			writeExportError(w, err)
		}
	}
}

func exportTreatmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := svc.ExportTreatments(r.Context(), w); err != nil {
			writeExportError(w, err)
		}
	}
}

func exportAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := svc.ExportAppointments(r.Context(), w); err != nil {
			writeExportError(w, err)
		}
	}
}

// importClientsHandler recibe un documento de clientes y hace upsert.
// @Summary  Importar clientes desde un documento JSON
// @Tags     exports
// @Accept   json
// @Produce  json
// @Success  200 {object} map[string]int
// @Failure  400 {object} map[string]string
// @Router   /imports/clients [post]
func importClientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.ImportClients(r.Context(), r.Body)
		if err != nil {
			writeExportError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"imported": count})
	}
}

func writeExportError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrInvalidDocument) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

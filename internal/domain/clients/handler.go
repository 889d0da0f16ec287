package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/clients", func(cr chi.Router) {
		cr.Post("/", registerClientHandler(svc))
		cr.Get("/", listClientsHandler(svc))
		cr.Get("/search", searchClientsHandler(svc))
		cr.Get("/by-national-id/{nationalID}", getClientByNationalIDHandler(svc))
		cr.Get("/{clientID}", getClientHandler(svc))
		cr.Patch("/{clientID}", updateClientHandler(svc))
		cr.Delete("/{clientID}", deleteClientHandler(svc))
	})
}

type registerClientRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	NationalID string `json:"national_id"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

type clientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	NationalID string    `json:"national_id"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type candidateResponse struct {
	Client       clientResponse `json:"client"`
	PatientNames []string       `json:"patient_names"`
}

// registerClientHandler godoc
// @Summary Registrar cliente
// @Description Registra un cliente nuevo. Rechaza con 409 si el national_id o el teléfono ya pertenecen a otro cliente.
// @Tags clients
// @Accept json
// @Produce json
// @Param payload body registerClientRequest true "Datos del cliente"
// @Success 201 {object} clientResponse
// @Failure 400 {string} string "invalid json / campo faltante"
// @Failure 409 {string} string "national_id o phone duplicado"
// @Router /clients [post]
func registerClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Register(r.Context(), RegisterInput{
			Name:       req.Name,
			Age:        req.Age,
			NationalID: req.NationalID,
			Address:    req.Address,
			Phone:      req.Phone,
		})
		if err != nil {
			writeClientError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toClientResponse(c))
	}
}

func listClientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]clientResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toClientResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// searchClientsHandler godoc
// @Summary Buscar clientes por nombre
// @Description Búsqueda por fragmento, case-insensitive. Devuelve candidatos anotados con los nombres de sus mascotas; elegir entre varios es responsabilidad del caller.
// @Tags clients
// @Produce json
// @Param name query string true "Fragmento del nombre"
// @Success 200 {array} candidateResponse
// @Failure 400 {string} string "name requerido"
// @Router /clients/search [get]
func searchClientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := svc.FindCandidates(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			writeClientError(w, err)
			return
		}

		out := make([]candidateResponse, 0, len(candidates))
		for _, c := range candidates {
			names := c.PatientNames
			if names == nil {
				names = []string{}
			}
			out = append(out, candidateResponse{
				Client:       toClientResponse(c.Client),
				PatientNames: names,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			writeClientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func getClientByNationalIDHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByNationalID(r.Context(), chi.URLParam(r, "nationalID"))
		if err != nil {
			writeClientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func updateClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Decodificamos a map primero para rechazar claves fuera del
		// allow-list en vez de ignorarlas en silencio.
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
			Name    *string `json:"name"`
			Age     *int    `json:"age"`
			Address *string `json:"address"`
			Phone   *string `json:"phone"`
		}
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Update(r.Context(), chi.URLParam(r, "clientID"), UpdateInput{
			Name:    req.Name,
			Age:     req.Age,
			Address: req.Address,
			Phone:   req.Phone,
		})
		if err != nil {
			writeClientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func deleteClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "clientID")); err != nil {
			writeClientError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
	}
}

func toClientResponse(c Client) clientResponse {
	return clientResponse{
		ID:         c.ID,
		Name:       c.Name,
		Age:        c.Age,
		NationalID: c.NationalID,
		Address:    c.Address,
		Phone:      c.Phone,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func writeClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrHasDependents):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en los handlers de cada
// módulo para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

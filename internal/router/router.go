package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-clinic-api/docs"
	mem "vet-clinic-api/internal/adapters/storage/memory"
	pg "vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/billing"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
	"vet-clinic-api/internal/domain/treatments"
	"vet-clinic-api/internal/export"
	"vet-clinic-api/internal/middleware"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	ExportDir   string
	CORSOrigins []string
	Logger      *zerolog.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(*opts.Logger))
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		clientsRepo      clients.Repository
		patientsRepo     patients.Repository
		treatmentsRepo   treatments.Repository
		appointmentsRepo appointments.Repository
		billingReader    billing.Reader
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		clientsRepo = pg.NewClientsRepo(db)
		patientsRepo = pg.NewPatientsRepo(db)
		treatmentsRepo = pg.NewTreatmentsRepo(db)
		appointmentsRepo = pg.NewAppointmentsRepo(db)
		billingReader = pg.NewBillingReader(db)
	} else {
		clientsRepo = mem.NewClientRepo()
		patientsRepo = mem.NewPatientRepo()
		treatmentsRepo = mem.NewTreatmentRepo()
		appointmentsRepo = mem.NewAppointmentRepo()
		billingReader = mem.NewBillingReader(treatmentsRepo, appointmentsRepo, clientsRepo, patientsRepo)
	}

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "exports"
	}

	// Services por módulo
	clientsSvc := clients.NewService(
		clientsRepo,
		patientNamer{patients: patientsRepo},
		dependentsChecker{patients: patientsRepo, appointments: appointmentsRepo},
	)
	patientsSvc := patients.NewService(patientsRepo, clientDirectory{clients: clientsRepo})
	treatmentsSvc := treatments.NewService(treatmentsRepo)
	appointmentsSvc := appointments.NewService(appointmentsRepo)
	billingSvc := billing.NewService(billingReader)
	exportSvc := export.NewService(clientsRepo, patientsRepo, treatmentsRepo, appointmentsRepo, exportDir)

	// Rutas por módulo
	clients.RegisterRoutes(r, clientsSvc)
	patients.RegisterRoutes(r, patientsSvc)
	treatments.RegisterRoutes(r, treatmentsSvc)
	appointments.RegisterRoutes(r, appointmentsSvc)
	billing.RegisterRoutes(r, billingSvc)
	export.RegisterRoutes(r, exportSvc)

	r.Get("/dashboard/summary", dashboardSummaryHandler(
		clientsRepo, patientsRepo, treatmentsRepo, appointmentsRepo,
	))

	return r
}

// dashboardSummaryHandler arma el resumen de totales de la portada.
func dashboardSummaryHandler(
	clientsRepo clients.Repository,
	patientsRepo patients.Repository,
	treatmentsRepo treatments.Repository,
	appointmentsRepo appointments.Repository,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cs, err := clientsRepo.List(ctx)
		if err != nil {
			writeSummaryError(w, err)
			return
		}
		ps, err := patientsRepo.List(ctx)
		if err != nil {
			writeSummaryError(w, err)
			return
		}
		ts, err := treatmentsRepo.List(ctx)
		if err != nil {
			writeSummaryError(w, err)
			return
		}
		as, err := appointmentsRepo.List(ctx, nil)
		if err != nil {
			writeSummaryError(w, err)
			return
		}

		byStatus := make(map[string]int)
		for _, a := range as {
			byStatus[string(a.Status)]++
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"clients":                len(cs),
			"patients":               len(ps),
			"treatments":             len(ts),
			"appointments":           len(as),
			"appointments_by_status": byStatus,
		})
	}
}

func writeSummaryError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

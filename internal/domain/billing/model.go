package billing

import (
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
	"vet-clinic-api/internal/domain/treatments"
)

// Snapshot es la agregación de solo lectura de las cuatro entidades
// que consume el renderer de facturas.
type Snapshot struct {
	Client      clients.Client
	Patient     patients.Patient
	Appointment appointments.Appointment
	Treatment   treatments.Treatment
}

package appointments

import "context"

type Repository interface {
	// Create inserta la cita. Con enforceUnique, la verificación de
	// duplicado y el insert deben ejecutar en una sola transacción;
	// una tupla idéntica devuelve ErrDuplicate.
	Create(ctx context.Context, a Appointment, enforceUnique bool) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	// FindFirst devuelve la primera cita de la mascota con el cliente
	// (chequeo de disponibilidad; sin orden garantizado).
	FindFirst(ctx context.Context, patientID, clientID string) (Appointment, error)
	// FindFirstByTreatment es la lectura que usa el agregador de facturación.
	FindFirstByTreatment(ctx context.Context, treatmentID string) (Appointment, error)
	// List devuelve todas las citas, opcionalmente filtradas por estado.
	// No impone orden; ordenar es responsabilidad del caller.
	List(ctx context.Context, status *Status) ([]Appointment, error)
	Update(ctx context.Context, a Appointment) error
	ExistsForClient(ctx context.Context, clientID string) (bool, error)
}

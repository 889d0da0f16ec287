package billing

import "context"

// Reader ejecuta la lectura multi-paso de la factura. La implementación
// postgres corre los cuatro pasos dentro de una transacción
// repeatable-read de solo lectura para no armar una factura sobre un
// estado a medio actualizar; la de memoria lee bajo sus mutexes.
//
// Pasos y errores que debe devolver, en orden:
//  1. tratamiento inexistente        -> ErrTreatmentNotFound
//  2. sin cita que lo referencie     -> ErrAppointmentNotFound
//  3. cliente o mascota inexistentes -> ErrPartiesNotFound
type Reader interface {
	Load(ctx context.Context, treatmentID string) (Snapshot, error)
}

package patients

import "time"

// Status es el estado vital de la mascota.
// Alive -> Deceased es terminal; re-marcar no es error.
type Status string

const (
	StatusAlive    Status = "Alive"
	StatusDeceased Status = "Deceased"
)

func ValidStatus(s Status) bool {
	return s == StatusAlive || s == StatusDeceased
}

// Patient representa una mascota bajo el cuidado de un cliente.
type Patient struct {
	ID        string
	Name      string
	Breed     string
	Age       int
	Condition string // afección, opcional
	Status    Status
	ClientID  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate anota un resultado de búsqueda por nombre con el nombre
// del dueño, para desambiguación del lado del caller.
type Candidate struct {
	Patient   Patient
	OwnerName string
}

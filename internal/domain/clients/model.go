package clients

import "time"

// Client representa a un dueño registrado en la clínica.
// NationalID y Phone son claves naturales únicas.
type Client struct {
	ID         string
	Name       string
	Age        int
	NationalID string
	Address    string
	Phone      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate es un resultado de búsqueda por nombre, anotado con los
// nombres de las mascotas del cliente para que el caller desambigüe.
type Candidate struct {
	Client       Client
	PatientNames []string
}

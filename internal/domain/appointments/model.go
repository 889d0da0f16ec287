package appointments

import "time"

// Status es el estado de la cita. Máquina:
// Pending -> Confirmed -> InProgress -> Completed
// {Pending, Confirmed, InProgress} -> Cancelled
// Completed y Cancelled son terminales.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentMethod se registra únicamente al completar la cita.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "Cash"
	PaymentCard          PaymentMethod = "Card"
	PaymentDigitalWallet PaymentMethod = "DigitalWallet"
	PaymentBankTransfer  PaymentMethod = "BankTransfer"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigitalWallet, PaymentBankTransfer:
		return true
	default:
		return false
	}
}

// Appointment enlaza un cliente, una mascota y un tratamiento en una
// fecha. La tupla (scheduled_at, description, patient, client,
// treatment) es única bajo validación por defecto.
type Appointment struct {
	ID          string
	ScheduledAt time.Time
	Description string
	Status      Status
	PatientID   string
	ClientID    string
	TreatmentID string

	// Nil hasta que Complete lo fija; no cambia después por esta vía.
	PaymentMethod *PaymentMethod

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameSlot compara la tupla natural que define la regla de no-duplicado.
func (a Appointment) SameSlot(b Appointment) bool {
	return a.ScheduledAt.Equal(b.ScheduledAt) &&
		a.Description == b.Description &&
		a.PatientID == b.PatientID &&
		a.ClientID == b.ClientID &&
		a.TreatmentID == b.TreatmentID
}

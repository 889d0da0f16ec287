package router

import (
	"context"
	"errors"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clients"
	"vet-clinic-api/internal/domain/patients"
)

// Adaptadores entre registros de dominio. Los paquetes de dominio no
// se importan entre sí; el router cablea estas vistas mínimas.

type patientNamer struct {
	patients patients.Repository
}

func (a patientNamer) PatientNames(ctx context.Context, clientID string) ([]string, error) {
	ps, err := a.patients.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return names, nil
}

type dependentsChecker struct {
	patients     patients.Repository
	appointments appointments.Repository
}

func (a dependentsChecker) ClientHasDependents(ctx context.Context, clientID string) (bool, error) {
	ps, err := a.patients.ListByClient(ctx, clientID)
	if err != nil {
		return false, err
	}
	if len(ps) > 0 {
		return true, nil
	}
	return a.appointments.ExistsForClient(ctx, clientID)
}

type clientDirectory struct {
	clients clients.Repository
}

func (a clientDirectory) ClientName(ctx context.Context, clientID string) (string, error) {
	c, err := a.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return "", patients.ErrClientNotFound
		}
		return "", err
	}
	return c.Name, nil
}

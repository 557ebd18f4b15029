package repository

import (
	"context"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// InvitationRepository define el puerto de persistencia para invitaciones.
type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByCode(ctx context.Context, code string) (*entity.Invitation, error)
	// GetByCodeForUpdate bloquea la invitación para que el check-and-increment de usos sea atómico.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.Invitation, error)
	// Update persiste estado y usos_actuales.
	Update(ctx context.Context, inv *entity.Invitation) error
	ListByProject(ctx context.Context, projectID string) ([]*entity.Invitation, error)
	ListAll(ctx context.Context) ([]*entity.Invitation, error)
}

package ports

import (
	"context"

	"github.com/jhoicas/Proyectos-api/internal/domain/repository"
)

// Repositories agrupa los repositorios atados a una misma conexión o transacción.
type Repositories struct {
	Users        repository.UserRepository
	Projects     repository.ProjectRepository
	Memberships  repository.MembershipRepository
	WorkAreas    repository.WorkAreaRepository
	Invitations  repository.InvitationRepository
	Deliverables repository.DeliverableRepository
	Transitions  repository.TransitionRepository
	Comments     repository.CommentRepository
	Phases       repository.PhaseRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ninguna escritura queda aplicada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// Store es el punto de entrada al almacenamiento: lecturas fuera de transacción (Repos)
// y unidades atómicas de escritura (Run).
type Store interface {
	TxRunner
	Repos() Repositories
}

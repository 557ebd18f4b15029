package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
	"github.com/jhoicas/Proyectos-api/internal/domain/repository"
)

// MembershipUseCase es el almacén autoritativo de (proyecto, usuario, rol, estado).
// Cada escritura es una transacción que además recalcula las columnas legacy del proyecto
// cuando el rol tiene representación en ellas.
type MembershipUseCase struct {
	store  ports.Store
	legacy *LegacyAdapter
	log    zerolog.Logger
}

// NewMembershipUseCase construye el caso de uso.
func NewMembershipUseCase(store ports.Store, legacy *LegacyAdapter, log zerolog.Logger) *MembershipUseCase {
	return &MembershipUseCase{store: store, legacy: legacy, log: log}
}

// Add inserta una membresía activa. Devuelve domain.ErrDuplicateActiveRole si el usuario ya
// tiene ese rol activo en el proyecto.
func (uc *MembershipUseCase) Add(ctx context.Context, projectID, userID string, role entity.ProjectRole) (*entity.Membership, error) {
	if projectID == "" || userID == "" || !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Membership
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("usuario %s: %w", userID, domain.ErrNotFound)
		}
		m, err := AddInTx(ctx, repos.Memberships, projectID, userID, role, time.Now())
		if err != nil {
			return err
		}
		if role.HasLegacyColumn() {
			if _, err := uc.legacy.SyncLegacyInTx(ctx, repos, project); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("project_id", projectID).
		Str("user_id", userID).
		Str("role", string(role)).
		Msg("membresía agregada")
	return out, nil
}

// AddInTx inserta la membresía usando el repositorio del caller (misma transacción).
// La usan Add, la aceptación de invitaciones y la creación de proyectos.
func AddInTx(ctx context.Context, repo repository.MembershipRepository, projectID, userID string, role entity.ProjectRole, now time.Time) (*entity.Membership, error) {
	existing, err := repo.GetActive(ctx, projectID, userID, role)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateActiveRole
	}
	// UUIDv7: el orden por id coincide con el orden de alta
	m := &entity.Membership{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ProjectID:  projectID,
		UserID:     userID,
		Role:       role,
		Status:     entity.MembershipActive,
		AssignedAt: now,
	}
	if err := repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Deactivate marca inactiva la membresía (baja lógica). Es idempotente sobre filas existentes
// pero devuelve domain.ErrNotFound si la tripleta nunca existió.
func (uc *MembershipUseCase) Deactivate(ctx context.Context, projectID, userID string, role entity.ProjectRole) error {
	if projectID == "" || userID == "" || !role.Valid() {
		return domain.ErrInvalidInput
	}
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		n, err := repos.Memberships.CountByTriple(ctx, projectID, userID, role)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("membresía %s/%s/%s: %w", projectID, userID, role, domain.ErrNotFound)
		}
		if err := repos.Memberships.DeactivateTriple(ctx, projectID, userID, role); err != nil {
			return err
		}
		if role.HasLegacyColumn() {
			if _, err := uc.legacy.SyncLegacyInTx(ctx, repos, project); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("project_id", projectID).
		Str("user_id", userID).
		Str("role", string(role)).
		Msg("membresía desactivada")
	return nil
}

// ListActiveMembers lista las membresías activas, el miembro más antiguo primero.
func (uc *MembershipUseCase) ListActiveMembers(ctx context.Context, projectID string) ([]*entity.Membership, error) {
	repos := uc.store.Repos()
	project, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return repos.Memberships.ListActiveByProject(ctx, projectID)
}

// ResolveRole devuelve el rol de mayor privilegio que el usuario tiene activo en el proyecto,
// o "" si no tiene membresía activa.
func (uc *MembershipUseCase) ResolveRole(ctx context.Context, projectID, userID string) (entity.ProjectRole, error) {
	return ResolveRole(ctx, uc.store.Repos().Memberships, projectID, userID)
}

// ResolveRole resuelve el rol sobre un repositorio concreto (pool o tx).
// Orden de privilegio: admin > coordinador > director > evaluador > estudiante.
func ResolveRole(ctx context.Context, repo repository.MembershipRepository, projectID, userID string) (entity.ProjectRole, error) {
	if projectID == "" || userID == "" {
		return "", nil
	}
	list, err := repo.ListActiveByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		return "", fmt.Errorf("resolver rol: %w", err)
	}
	roles := make([]entity.ProjectRole, 0, len(list))
	for _, m := range list {
		roles = append(roles, m.Role)
	}
	return entity.HighestPrivilege(roles), nil
}

package invitation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// Config valores por defecto de nuevas invitaciones.
type Config struct {
	DefaultTTL     time.Duration
	DefaultMaxUses int
}

// InvitationUseCase emite y canjea invitaciones a proyectos.
type InvitationUseCase struct {
	store   ports.Store
	legacy  *membership.LegacyAdapter
	cfg     Config
	log     zerolog.Logger
	metrics ports.Metrics
	now     func() time.Time
}

// NewInvitationUseCase construye el caso de uso. metrics puede ser nil.
func NewInvitationUseCase(store ports.Store, legacy *membership.LegacyAdapter, cfg Config, log zerolog.Logger, metrics ports.Metrics) *InvitationUseCase {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 72 * time.Hour
	}
	if cfg.DefaultMaxUses <= 0 {
		cfg.DefaultMaxUses = 1
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &InvitationUseCase{store: store, legacy: legacy, cfg: cfg, log: log, metrics: metrics, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *InvitationUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Create emite una invitación. maxUses <= 0 y expiresAt nil toman los valores por defecto.
// El invitador necesita la capacidad de invitar y no puede otorgar un rol de mayor privilegio que el suyo.
func (uc *InvitationUseCase) Create(ctx context.Context, projectID string, role entity.ProjectRole, inviterID string, maxUses int, expiresAt *time.Time) (*entity.Invitation, error) {
	if projectID == "" || inviterID == "" || !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	if maxUses <= 0 {
		maxUses = uc.cfg.DefaultMaxUses
	}
	exp := now.Add(uc.cfg.DefaultTTL)
	if expiresAt != nil {
		if !expiresAt.After(now) {
			return nil, fmt.Errorf("fecha de expiración en el pasado: %w", domain.ErrInvalidInput)
		}
		exp = *expiresAt
	}
	code, err := newCode()
	if err != nil {
		return nil, fmt.Errorf("generar código: %w", err)
	}
	inv := &entity.Invitation{
		Code:      code,
		ProjectID: projectID,
		Role:      role,
		InvitedBy: inviterID,
		Status:    entity.InvitationPending,
		ExpiresAt: exp,
		MaxUses:   maxUses,
		CreatedAt: now,
	}
	err = uc.store.Run(ctx, func(repos ports.Repositories) error {
		project, err := repos.Projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", projectID, domain.ErrNotFound)
		}
		gate := access.NewGate(repos, uc.log, uc.metrics)
		inviterRole, err := gate.RequireCapability(ctx, inviterID, projectID, entity.CapInviteMembers)
		if err != nil {
			return err
		}
		if role.Privilege() > inviterRole.Privilege() {
			return fmt.Errorf("no puede otorgar %s siendo %s: %w", role, inviterRole, domain.ErrForbidden)
		}
		return repos.Invitations.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("project_id", projectID).
		Str("role", string(role)).
		Str("invited_by", inviterID).
		Int("max_uses", maxUses).
		Time("expires_at", exp).
		Msg("invitación creada")
	return inv, nil
}

// Accept canjea el código para userID. Bloquea la invitación, valida estado, expiración y usos,
// crea la membresía, incrementa usos y activa el área de trabajo del proyecto, todo en una tx.
// Si el usuario ya tiene el rol activo se devuelve domain.ErrDuplicateActiveRole sin consumir un uso.
func (uc *InvitationUseCase) Accept(ctx context.Context, code, userID string) (*entity.Membership, error) {
	if code == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var out *entity.Membership
	var inv *entity.Invitation
	err := uc.store.Run(ctx, func(repos ports.Repositories) error {
		var err error
		inv, err = repos.Invitations.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("invitación: %w", domain.ErrNotFound)
		}
		switch {
		case inv.Status == entity.InvitationRevoked:
			return domain.ErrInvitationRevoked
		case inv.Status == entity.InvitationExpired || inv.IsExpired(now):
			return domain.ErrInvitationExpired
		case inv.Status == entity.InvitationAccepted || inv.Exhausted():
			return domain.ErrInvitationExhausted
		}
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("usuario %s: %w", userID, domain.ErrNotFound)
		}
		project, err := repos.Projects.GetForUpdate(ctx, inv.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("proyecto %s: %w", inv.ProjectID, domain.ErrNotFound)
		}
		m, err := membership.AddInTx(ctx, repos.Memberships, inv.ProjectID, userID, inv.Role, now)
		if err != nil {
			return err
		}
		inv.Uses++
		if inv.Exhausted() {
			inv.Status = entity.InvitationAccepted
		}
		if err := repos.Invitations.Update(ctx, inv); err != nil {
			return err
		}
		if project.WorkAreaID != nil && *project.WorkAreaID != "" {
			if err := ensureWorkArea(ctx, repos, userID, *project.WorkAreaID); err != nil {
				return err
			}
		}
		if inv.Role.HasLegacyColumn() {
			if _, err := uc.legacy.SyncLegacyInTx(ctx, repos, project); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	uc.metrics.InvitationRedeemed(outcomeOf(err))
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("project_id", inv.ProjectID).
		Str("user_id", userID).
		Str("role", string(inv.Role)).
		Int("uses", inv.Uses).
		Int("max_uses", inv.MaxUses).
		Msg("invitación aceptada")
	return out, nil
}

func ensureWorkArea(ctx context.Context, repos ports.Repositories, userID, workAreaID string) error {
	a, err := repos.WorkAreas.Get(ctx, userID, workAreaID)
	if err != nil {
		return err
	}
	if a == nil {
		return repos.WorkAreas.Create(ctx, &entity.WorkAreaAssignment{
			UserID:     userID,
			WorkAreaID: workAreaID,
			Active:     true,
		})
	}
	if !a.Active {
		return repos.WorkAreas.Activate(ctx, userID, workAreaID)
	}
	return nil
}

// Revoke invalida el código. Revocar dos veces no es error; una invitación ya agotada no se revoca.
func (uc *InvitationUseCase) Revoke(ctx context.Context, code, userID string) error {
	if code == "" || userID == "" {
		return domain.ErrInvalidInput
	}
	return uc.store.Run(ctx, func(repos ports.Repositories) error {
		inv, err := repos.Invitations.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("invitación: %w", domain.ErrNotFound)
		}
		gate := access.NewGate(repos, uc.log, uc.metrics)
		if _, err := gate.RequireCapability(ctx, userID, inv.ProjectID, entity.CapInviteMembers); err != nil {
			return err
		}
		switch inv.Status {
		case entity.InvitationRevoked:
			return nil
		case entity.InvitationAccepted:
			return fmt.Errorf("invitación agotada: %w", domain.ErrInvalidInput)
		}
		inv.Status = entity.InvitationRevoked
		return repos.Invitations.Update(ctx, inv)
	})
}

// ListByProject lista las invitaciones del proyecto para quien puede invitar.
func (uc *InvitationUseCase) ListByProject(ctx context.Context, projectID, userID string) ([]*entity.Invitation, error) {
	repos := uc.store.Repos()
	project, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	gate := access.NewGate(repos, uc.log, uc.metrics)
	if _, err := gate.RequireCapability(ctx, userID, projectID, entity.CapInviteMembers); err != nil {
		return nil, err
	}
	return repos.Invitations.ListByProject(ctx, projectID)
}

func newCode() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeOK
	case errors.Is(err, domain.ErrInvitationExpired):
		return ports.OutcomeExpired
	case errors.Is(err, domain.ErrInvitationExhausted), errors.Is(err, domain.ErrInvitationRevoked):
		return ports.OutcomeExhausted
	case errors.Is(err, domain.ErrDuplicateActiveRole):
		return ports.OutcomeIllegal
	}
	return ports.OutcomeError
}

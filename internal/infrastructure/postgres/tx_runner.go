package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
)

var _ ports.Store = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL y expone repos sobre el pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos devuelve repositorios sobre el pool (lecturas fuera de tx).
func (r *TxRunner) Repos() ports.Repositories {
	return NewRepositories(r.pool)
}

// NewRepositories ata todos los adaptadores a un mismo Querier (pool o tx).
func NewRepositories(q Querier) ports.Repositories {
	return ports.Repositories{
		Users:        NewUserRepository(q),
		Projects:     NewProjectRepository(q),
		Memberships:  NewMembershipRepository(q),
		WorkAreas:    NewWorkAreaRepository(q),
		Invitations:  NewInvitationRepository(q),
		Deliverables: NewDeliverableRepository(q),
		Transitions:  NewTransitionRepository(q),
		Comments:     NewCommentRepository(q),
		Phases:       NewPhaseRepository(q),
	}
}

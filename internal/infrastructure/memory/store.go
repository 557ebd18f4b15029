// Package memory implementa ports.Store en memoria para tests y para STORAGE_DRIVER=memory.
// Todas las transacciones se serializan con un único mutex; si fn falla se restaura la
// instantánea tomada al inicio.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

type workAreaKey struct{ userID, workAreaID string }

type state struct {
	users        map[string]entity.User
	projects     map[string]entity.Project
	memberships  []entity.Membership
	workAreas    map[workAreaKey]entity.WorkAreaAssignment
	invitations  map[string]entity.Invitation
	deliverables map[string]entity.Deliverable
	transitions  []entity.DeliverableTransition
	comments     []entity.DeliverableComment
	phases       map[string]entity.Phase
}

func newState() *state {
	return &state{
		users:        map[string]entity.User{},
		projects:     map[string]entity.Project{},
		workAreas:    map[workAreaKey]entity.WorkAreaAssignment{},
		invitations:  map[string]entity.Invitation{},
		deliverables: map[string]entity.Deliverable{},
		phases:       map[string]entity.Phase{},
	}
}

// clone copia superficial por valor; los punteros internos (*string, *time.Time) se tratan como inmutables.
func (s *state) clone() *state {
	c := &state{
		users:        make(map[string]entity.User, len(s.users)),
		projects:     make(map[string]entity.Project, len(s.projects)),
		memberships:  append([]entity.Membership(nil), s.memberships...),
		workAreas:    make(map[workAreaKey]entity.WorkAreaAssignment, len(s.workAreas)),
		invitations:  make(map[string]entity.Invitation, len(s.invitations)),
		deliverables: make(map[string]entity.Deliverable, len(s.deliverables)),
		transitions:  append([]entity.DeliverableTransition(nil), s.transitions...),
		comments:     append([]entity.DeliverableComment(nil), s.comments...),
		phases:       make(map[string]entity.Phase, len(s.phases)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.workAreas {
		c.workAreas[k] = v
	}
	for k, v := range s.invitations {
		c.invitations[k] = v
	}
	for k, v := range s.deliverables {
		c.deliverables[k] = v
	}
	for k, v := range s.phases {
		c.phases[k] = v
	}
	return c
}

// Store almacenamiento en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con el mutex tomado. Un error restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snap
		return err
	}
	return nil
}

// Repos devuelve repositorios que toman el mutex en cada llamada.
// No deben usarse dentro de Run: allí se usan los repos recibidos por fn.
func (s *Store) Repos() ports.Repositories {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) ports.Repositories {
	b := base{s: s, inTx: inTx}
	return ports.Repositories{
		Users:        userRepo{b},
		Projects:     projectRepo{b},
		Memberships:  membershipRepo{b},
		WorkAreas:    workAreaRepo{b},
		Invitations:  invitationRepo{b},
		Deliverables: deliverableRepo{b},
		Transitions:  transitionRepo{b},
		Comments:     commentRepo{b},
		Phases:       phaseRepo{b},
	}
}

type base struct {
	s    *Store
	inTx bool
}

// with ejecuta f sobre el estado vigente, tomando el mutex si no se está en una tx.
func (b base) with(f func(d *state) error) error {
	if !b.inTx {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	return f(b.s.data)
}

var _ ports.Store = (*Store)(nil)

package entity

import "time"

// WorkflowState estado de un entregable en el flujo de revisión.
type WorkflowState string

// Estados del flujo. El valor es el literal persistido en entregables.estado.
const (
	StatePending         WorkflowState = "pendiente"
	StateInProgress      WorkflowState = "en_progreso"
	StateSubmitted       WorkflowState = "entregado"
	StateUnderReview     WorkflowState = "en_revision"
	StateAccepted        WorkflowState = "aceptado"
	StateRejected        WorkflowState = "rechazado"
	StateRequiresChanges WorkflowState = "requiere_cambios"
	StateCompleted       WorkflowState = "completado"
)

// AllStates todos los estados del flujo, en orden de aparición.
var AllStates = []WorkflowState{
	StatePending, StateInProgress, StateSubmitted, StateUnderReview,
	StateAccepted, StateRejected, StateRequiresChanges, StateCompleted,
}

// Valid informa si el estado existe.
func (s WorkflowState) Valid() bool {
	for _, v := range AllStates {
		if v == s {
			return true
		}
	}
	return false
}

// Deliverable entregable de una fase de un proyecto.
type Deliverable struct {
	ID           string
	ProjectID    string
	PhaseID      string
	Title        string
	State        WorkflowState
	AssigneeID   *string
	DueDate      *time.Time
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOverdue propiedad derivada: vencido si now > fecha_limite y no está aceptado ni completado.
// Nunca se persiste como estado.
func (d *Deliverable) IsOverdue(now time.Time) bool {
	if d.DueDate == nil {
		return false
	}
	if d.State == StateAccepted || d.State == StateCompleted {
		return false
	}
	return now.After(*d.DueDate)
}

// DeliverableTransition registro de auditoría implícito de cada cambio de estado.
// ActorID nil indica una transición del sistema.
type DeliverableTransition struct {
	ID            string
	DeliverableID string
	FromState     WorkflowState
	ToState       WorkflowState
	ActorID       *string
	CreatedAt     time.Time
}

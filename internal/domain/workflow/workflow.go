// Package workflow declara, una sola vez, las aristas del flujo de revisión de entregables
// y el rol exigido por cada una. El resto de la aplicación consulta estas tablas; ninguna
// consulta SQL ni handler repite la lógica.
package workflow

import "github.com/jhoicas/Proyectos-api/internal/domain/entity"

// Edge arista del flujo (estado origen → estado destino).
type Edge struct {
	From entity.WorkflowState
	To   entity.WorkflowState
}

// Requirement quién puede recorrer una arista.
type Requirement struct {
	Roles        []entity.ProjectRole
	AssigneeOnly bool // el estudiante debe ser el asignado del entregable
	System       bool // el sistema (p. ej. al finalizar el proyecto) puede recorrerla
}

var reviewers = []entity.ProjectRole{entity.RoleCoordinator, entity.RoleDirector}

var edges = map[Edge]Requirement{
	{entity.StatePending, entity.StateInProgress}:         {Roles: []entity.ProjectRole{entity.RoleStudent}, AssigneeOnly: true},
	{entity.StateInProgress, entity.StateSubmitted}:       {Roles: []entity.ProjectRole{entity.RoleStudent}, AssigneeOnly: true},
	{entity.StateSubmitted, entity.StateUnderReview}:      {Roles: reviewers},
	{entity.StateUnderReview, entity.StateAccepted}:       {Roles: reviewers},
	{entity.StateUnderReview, entity.StateRejected}:       {Roles: reviewers},
	{entity.StateUnderReview, entity.StateRequiresChanges}: {Roles: reviewers},
	{entity.StateRequiresChanges, entity.StateInProgress}: {Roles: []entity.ProjectRole{entity.RoleStudent}, AssigneeOnly: true},
	{entity.StateAccepted, entity.StateCompleted}:         {Roles: []entity.ProjectRole{entity.RoleCoordinator}, System: true},
}

// CanMove informa si la arista from → to existe.
func CanMove(from, to entity.WorkflowState) bool {
	_, ok := edges[Edge{from, to}]
	return ok
}

// RequirementFor devuelve el requisito de rol de la arista.
func RequirementFor(from, to entity.WorkflowState) (Requirement, bool) {
	r, ok := edges[Edge{from, to}]
	return r, ok
}

// Next devuelve los estados alcanzables desde from, en el orden de entity.AllStates.
func Next(from entity.WorkflowState) []entity.WorkflowState {
	var out []entity.WorkflowState
	for _, s := range entity.AllStates {
		if CanMove(from, s) {
			out = append(out, s)
		}
	}
	return out
}

// IsTerminal informa si ninguna arista sale del estado.
func IsTerminal(s entity.WorkflowState) bool {
	return len(Next(s)) == 0
}

// Edges devuelve una copia de la tabla de aristas.
func Edges() map[Edge]Requirement {
	out := make(map[Edge]Requirement, len(edges))
	for k, v := range edges {
		out[k] = v
	}
	return out
}

// Authorize informa si un usuario con el rol resuelto puede recorrer from → to.
// isAssignee debe ser true si el entregable no tiene asignado o el asignado es el usuario.
func Authorize(from, to entity.WorkflowState, role entity.ProjectRole, isAssignee bool) bool {
	req, ok := edges[Edge{from, to}]
	if !ok || role == "" {
		return false
	}
	for _, r := range req.Roles {
		if r != role {
			continue
		}
		if req.AssigneeOnly && r == entity.RoleStudent && !isAssignee {
			return false
		}
		return true
	}
	return false
}

// AuthorizeSystem informa si el sistema puede recorrer from → to sin actor humano.
func AuthorizeSystem(from, to entity.WorkflowState) bool {
	req, ok := edges[Edge{from, to}]
	return ok && req.System
}

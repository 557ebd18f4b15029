package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ProjectRole rol de un usuario dentro de un proyecto (también se usa como rol de sistema).
type ProjectRole string

// Roles válidos. El valor es el literal persistido en proyecto_usuarios.rol.
const (
	RoleStudent     ProjectRole = "estudiante"
	RoleDirector    ProjectRole = "director"
	RoleCoordinator ProjectRole = "coordinador"
	RoleEvaluator   ProjectRole = "evaluador"
	RoleAdmin       ProjectRole = "admin"
)

// Capability acción que un rol puede ejercer sobre un proyecto.
type Capability string

const (
	CapViewDeliverables   Capability = "ver_entregables"
	CapWorkDeliverables   Capability = "trabajar_entregables"
	CapReviewDeliverables Capability = "revisar_entregables"
	CapCloseDeliverables  Capability = "cerrar_entregables"
	CapCreateDeliverables Capability = "crear_entregables"
	CapInviteMembers      Capability = "invitar_miembros"
	CapFinalizeProject    Capability = "finalizar_proyecto"
)

// RoleDefinition fila de la tabla de roles (estática, solo lectura en runtime).
type RoleDefinition struct {
	Role         ProjectRole
	Name         string
	Privilege    int // mayor valor = mayor privilegio
	Capabilities []Capability
}

var roleTable = []RoleDefinition{
	{Role: RoleStudent, Name: "Estudiante", Privilege: 1, Capabilities: []Capability{
		CapViewDeliverables, CapWorkDeliverables,
	}},
	{Role: RoleEvaluator, Name: "Evaluador", Privilege: 2, Capabilities: []Capability{
		CapViewDeliverables,
	}},
	{Role: RoleDirector, Name: "Director", Privilege: 3, Capabilities: []Capability{
		CapViewDeliverables, CapReviewDeliverables, CapCreateDeliverables, CapInviteMembers,
	}},
	{Role: RoleCoordinator, Name: "Coordinador", Privilege: 4, Capabilities: []Capability{
		CapViewDeliverables, CapReviewDeliverables, CapCloseDeliverables, CapCreateDeliverables,
		CapInviteMembers, CapFinalizeProject,
	}},
	{Role: RoleAdmin, Name: "Administrador", Privilege: 5, Capabilities: []Capability{
		CapViewDeliverables, CapCreateDeliverables, CapInviteMembers, CapFinalizeProject,
	}},
}

// Roles devuelve la tabla de roles ordenada de menor a mayor privilegio.
func Roles() []RoleDefinition {
	out := make([]RoleDefinition, len(roleTable))
	copy(out, roleTable)
	return out
}

func definition(r ProjectRole) (RoleDefinition, bool) {
	for _, d := range roleTable {
		if d.Role == r {
			return d, true
		}
	}
	return RoleDefinition{}, false
}

// Valid informa si el rol pertenece a la tabla de roles.
func (r ProjectRole) Valid() bool {
	_, ok := definition(r)
	return ok
}

// Privilege devuelve el nivel de privilegio (0 si el rol no existe).
func (r ProjectRole) Privilege() int {
	d, _ := definition(r)
	return d.Privilege
}

// Name nombre legible del rol.
func (r ProjectRole) Name() string {
	d, _ := definition(r)
	return d.Name
}

// Can informa si el rol tiene la capacidad indicada.
func (r ProjectRole) Can(c Capability) bool {
	d, ok := definition(r)
	if !ok {
		return false
	}
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// HasLegacyColumn informa si el rol tiene representación en las columnas legacy del proyecto
// (estudiante_id, director_id, evaluador_id).
func (r ProjectRole) HasLegacyColumn() bool {
	return r == RoleStudent || r == RoleDirector || r == RoleEvaluator
}

// LegacyRoles roles con columna legacy, en el orden en que se sincronizan.
var LegacyRoles = []ProjectRole{RoleDirector, RoleStudent, RoleEvaluator}

// HighestPrivilege devuelve el rol de mayor privilegio de la lista, o "" si está vacía.
func HighestPrivilege(roles []ProjectRole) ProjectRole {
	var best ProjectRole
	for _, r := range roles {
		if r.Privilege() > best.Privilege() {
			best = r
		}
	}
	return best
}

var roleAliases = map[string]ProjectRole{
	"estudiante":    RoleStudent,
	"student":       RoleStudent,
	"director":      RoleDirector,
	"coordinador":   RoleCoordinator,
	"coordinator":   RoleCoordinator,
	"evaluador":     RoleEvaluator,
	"evaluator":     RoleEvaluator,
	"admin":         RoleAdmin,
	"administrador": RoleAdmin,
}

// ParseProjectRole normaliza un literal de rol (mayúsculas, tildes, espacios) al enum.
// Los datos históricos traen "Coordinador", "DIRECTOR" o "Estudiánte".
func ParseProjectRole(s string) (ProjectRole, bool) {
	r, ok := roleAliases[foldRole(s)]
	return r, ok
}

func foldRole(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Fold().String(out)
}

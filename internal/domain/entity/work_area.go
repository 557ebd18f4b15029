package entity

// WorkAreaAssignment asignación de un usuario a un área de trabajo (usuario_areas_trabajo).
// Da visibilidad de lectura sobre los proyectos del área, nunca derechos de transición.
type WorkAreaAssignment struct {
	UserID     string
	WorkAreaID string
	IsAdmin    bool
	IsOwner    bool
	Active     bool
}

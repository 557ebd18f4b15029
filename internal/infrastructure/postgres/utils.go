package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// parseRole normaliza literales históricos ("Coordinador", "DIRECTOR"). Si no se reconoce,
// se conserva el valor crudo para que el chequeo de consistencia lo vea.
func parseRole(raw string) entity.ProjectRole {
	if r, ok := entity.ParseProjectRole(raw); ok {
		return r
	}
	return entity.ProjectRole(raw)
}

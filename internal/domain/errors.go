package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada uno es distinguible con errors.Is para que la capa HTTP muestre mensajes distintos
// ("ya es miembro" vs "el enlace expiró").
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrDuplicateActiveRole = errors.New("el usuario ya tiene ese rol activo en el proyecto")
	ErrIllegalTransition   = errors.New("transición no permitida desde el estado actual")
	ErrForbiddenTransition = errors.New("el usuario no tiene el rol requerido para esta transición")
	ErrInvitationExpired   = errors.New("la invitación expiró")
	ErrInvitationExhausted = errors.New("la invitación alcanzó su límite de usos")
	ErrInvitationRevoked   = errors.New("la invitación fue revocada")
)

package entity

import "time"

// User representa un usuario del sistema. Lo gestiona el subsistema de autenticación;
// el núcleo solo lo lee.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	Role         ProjectRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package models

import (
	"time"
)

// User roles. Stored as plain strings in the rol column.
const (
	RolAutor   = "AUTOR"
	RolRevisor = "REVISOR"
	RolComite  = "COMITE"
	RolAdmin   = "ADMIN"
)

type User struct {
	UserID          string     `gorm:"primaryKey;column:user_id" json:"user_id"`
	Nombre          string     `gorm:"column:nombre" json:"nombre"`
	ApellidoPaterno string     `gorm:"column:apellido_paterno" json:"apellido_paterno"`
	ApellidoMaterno string     `gorm:"column:apellido_materno" json:"apellido_materno"`
	Email           string     `gorm:"column:email;unique" json:"email"`
	Password        string     `gorm:"column:password" json:"-"`
	Rol             string     `gorm:"column:rol" json:"rol"`
	Activo          bool       `gorm:"column:activo" json:"activo"`
	NumeroControl   *string    `gorm:"column:numero_control" json:"numero_control,omitempty"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// NombreCompleto returns the display name used on verdict documents.
func (u *User) NombreCompleto() string {
	full := u.Nombre + " " + u.ApellidoPaterno
	if u.ApellidoMaterno != "" {
		full += " " + u.ApellidoMaterno
	}
	return full
}

// EsEstudiante reports whether the user registered a student control number,
// which selects the discounted payment tier.
func (u *User) EsEstudiante() bool {
	return u.NumeroControl != nil && *u.NumeroControl != ""
}

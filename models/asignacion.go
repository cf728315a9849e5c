package models

import "time"

// MaxAsignacionesActivas is the per-reviewer cap on simultaneously active
// assignments.
const MaxAsignacionesActivas = 4

// Asignacion links a reviewer to a work. The id is a year-prefixed sequence
// generated server-side ("2026-0041"). A reviewer holds at most one active
// assignment per work and at most MaxAsignacionesActivas active overall;
// the composite unique index backs the one-active-per-pair rule at the
// database, not just in the transaction's checks.
type Asignacion struct {
	AsignacionID string     `gorm:"primaryKey;column:asignacion_id" json:"asignacion_id"`
	TrabajoID    int        `gorm:"column:trabajo_id;uniqueIndex:idx_trabajo_revisor_activa" json:"trabajo_id"`
	RevisorID    string     `gorm:"column:revisor_id;uniqueIndex:idx_trabajo_revisor_activa" json:"revisor_id"`
	Activa       bool       `gorm:"column:activa;uniqueIndex:idx_trabajo_revisor_activa" json:"activa"`
	Calificacion *float64   `gorm:"column:calificacion" json:"calificacion,omitempty"`
	Comentario   *string    `gorm:"column:comentario" json:"comentario,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	Trabajo *Trabajo `gorm:"foreignKey:TrabajoID" json:"trabajo,omitempty"`
	Revisor *User    `gorm:"foreignKey:RevisorID" json:"revisor,omitempty"`
}

func (Asignacion) TableName() string {
	return "asignaciones"
}

// Calificada reports whether the reviewer already scored this assignment.
func (a *Asignacion) Calificada() bool {
	return a.Calificacion != nil
}

package models

import "time"

// Comentario is anonymous reviewer feedback attached to a work. There is
// deliberately no reviewer column: anonymity is enforced by the schema, not
// by response filtering.
type Comentario struct {
	ComentarioID int       `gorm:"primaryKey;autoIncrement;column:comentario_id" json:"comentario_id"`
	TrabajoID    int       `gorm:"column:trabajo_id" json:"trabajo_id"`
	Contenido    string    `gorm:"column:contenido" json:"contenido"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`
}

func (Comentario) TableName() string {
	return "comentarios"
}

package models

import "time"

// CriterioEvaluacion is a rubric row. Reviewers rate every active criterion
// of the work's grupo on a 1-5 scale; the per-band descriptions explain what
// each value means for that criterion.
type CriterioEvaluacion struct {
	CriterioID   int        `gorm:"primaryKey;autoIncrement;column:criterio_id" json:"criterio_id"`
	Nombre       string     `gorm:"column:nombre" json:"nombre"`
	Descripcion  string     `gorm:"column:descripcion" json:"descripcion"`
	Grupo        string     `gorm:"column:grupo" json:"grupo"`
	Descripcion1 string     `gorm:"column:descripcion_1" json:"descripcion_1"`
	Descripcion2 string     `gorm:"column:descripcion_2" json:"descripcion_2"`
	Descripcion3 string     `gorm:"column:descripcion_3" json:"descripcion_3"`
	Descripcion4 string     `gorm:"column:descripcion_4" json:"descripcion_4"`
	Descripcion5 string     `gorm:"column:descripcion_5" json:"descripcion_5"`
	Activo       bool       `gorm:"column:activo" json:"activo"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (CriterioEvaluacion) TableName() string {
	return "criterios_evaluacion"
}

package models

import "time"

// Convocatoria is a submission window for the congress. Works may only be
// submitted while the current time falls inside [FechaApertura, FechaCierre].
type Convocatoria struct {
	ConvocatoriaID int        `gorm:"primaryKey;autoIncrement;column:convocatoria_id" json:"convocatoria_id"`
	Titulo         string     `gorm:"column:titulo" json:"titulo"`
	Descripcion    string     `gorm:"column:descripcion" json:"descripcion"`
	FechaApertura  time.Time  `gorm:"column:fecha_apertura" json:"fecha_apertura"`
	FechaCierre    time.Time  `gorm:"column:fecha_cierre" json:"fecha_cierre"`
	Temas          string     `gorm:"column:temas" json:"temas"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Convocatoria) TableName() string {
	return "convocatorias"
}

// Abierta reports whether the window accepts submissions at the given time.
func (c *Convocatoria) Abierta(now time.Time) bool {
	return !now.Before(c.FechaApertura) && !now.After(c.FechaCierre)
}

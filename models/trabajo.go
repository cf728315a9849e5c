package models

import "time"

// Work types.
const (
	TipoDifusion    = "DIFUSION"
	TipoDivulgacion = "DIVULGACION"
)

// Work states. EstadoAceptado and EstadoRechazado are terminal; the
// revision loop is EN_REVISION -> CAMBIOS_SOLICITADOS -> EN_REVISION.
const (
	EstadoEnRevision         = "EN_REVISION"
	EstadoCambiosSolicitados = "CAMBIOS_SOLICITADOS"
	EstadoAceptado           = "ACEPTADO"
	EstadoRechazado          = "RECHAZADO"
)

// Trabajo is a paper submitted against a Convocatoria. Exactly one Trabajo
// may exist per (user, convocatoria) pair.
type Trabajo struct {
	TrabajoID         int        `gorm:"primaryKey;autoIncrement;column:trabajo_id" json:"trabajo_id"`
	Titulo            string     `gorm:"column:titulo" json:"titulo"`
	Tipo              string     `gorm:"column:tipo" json:"tipo"`
	Coautores         string     `gorm:"column:coautores" json:"coautores"`
	UserID            string     `gorm:"column:user_id;uniqueIndex:idx_autor_convocatoria" json:"user_id"`
	ConvocatoriaID    int        `gorm:"column:convocatoria_id;uniqueIndex:idx_autor_convocatoria" json:"convocatoria_id"`
	Archivo           string     `gorm:"column:archivo" json:"archivo"`
	Estado            string     `gorm:"column:estado" json:"estado"`
	Intento           int        `gorm:"column:intento" json:"intento"`
	NvlIA             *float64   `gorm:"column:nvl_ia" json:"nvl_ia,omitempty"`
	NvlPlagio         *float64   `gorm:"column:nvl_plagio" json:"nvl_plagio,omitempty"`
	CalificacionFinal *float64   `gorm:"column:calificacion_final" json:"calificacion_final,omitempty"`
	Presencial        *bool      `gorm:"column:presencial" json:"presencial,omitempty"`
	ReferenciaPago    *string    `gorm:"column:referencia_pago" json:"referencia_pago,omitempty"`
	CreateAt          *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt          *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Autor        *User         `gorm:"foreignKey:UserID" json:"autor,omitempty"`
	Convocatoria *Convocatoria `gorm:"foreignKey:ConvocatoriaID" json:"convocatoria,omitempty"`
}

func (Trabajo) TableName() string {
	return "trabajos"
}

// EsTerminal reports whether the work reached a final committee decision.
func (t *Trabajo) EsTerminal() bool {
	return t.Estado == EstadoAceptado || t.Estado == EstadoRechazado
}

// ScreeningRegistrado reports whether AI and plagiarism levels were recorded.
func (t *Trabajo) ScreeningRegistrado() bool {
	return t.NvlIA != nil && t.NvlPlagio != nil
}

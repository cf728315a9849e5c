package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"sigca-api/config"
	"sigca-api/models"
)

// Reviewer verdicts. These are the individual reviewer's signal over one
// assignment, not the committee's final decision over the work.
const (
	VeredictoAceptado           = "ACEPTADO"
	VeredictoCambiosSolicitados = "CAMBIOS_SOLICITADOS"
	VeredictoRechazado          = "RECHAZADO"
)

// Suggested-disposition cutoffs for the rubric percentage.
const (
	umbralAceptacion = 80.0
	umbralCambios    = 60.0
)

var (
	ErrAsignacionInactiva   = errors.New("la asignación ya no está activa")
	ErrAsignacionAjena      = errors.New("la asignación pertenece a otro revisor")
	ErrVeredictoInvalido    = errors.New("el veredicto indicado no es válido")
	ErrComentarioRequerido  = errors.New("se requiere un comentario para solicitar cambios")
	ErrCriteriosIncompletos = errors.New("debe calificar todos los criterios de evaluación")
	ErrValorLikertInvalido  = errors.New("las calificaciones por criterio deben estar entre 1 y 5")
	ErrSinCriteriosActivos  = errors.New("no hay criterios de evaluación activos para el tipo de trabajo")
)

// ReviewRepo is the persistence surface of review capture.
type ReviewRepo interface {
	InTransaction(fn func(ReviewRepo) error) error
	AsignacionPorID(asignacionID string) (*models.Asignacion, error)
	TrabajoPorID(trabajoID int) (*models.Trabajo, error)
	GuardarAsignacion(a *models.Asignacion) error
	ActualizarEstadoTrabajo(trabajoID int, estado string, intento *int) error
	CrearComentario(c *models.Comentario) error
	CriteriosActivos(grupo string) ([]models.CriterioEvaluacion, error)
}

// ReviewService records reviewer assessments and rubric scores.
type ReviewService struct {
	repo ReviewRepo
	now  func() time.Time
}

func NewReviewService(repo ReviewRepo) *ReviewService {
	return &ReviewService{repo: repo, now: time.Now}
}

// RegistrarEvaluacion applies a reviewer verdict over an active assignment.
// ACEPTADO and RECHAZADO deactivate the assignment; CAMBIOS_SOLICITADOS
// keeps it active and requires a comment. A work with a final dictamen
// accepts no further evaluations. The work-state update, assignment
// deactivation and anonymous comment commit as one unit.
func (s *ReviewService) RegistrarEvaluacion(p Principal, trabajoID int, asignacionID, veredicto, comentario string) (*models.Trabajo, error) {
	comentario = strings.TrimSpace(comentario)

	switch veredicto {
	case VeredictoAceptado, VeredictoRechazado:
	case VeredictoCambiosSolicitados:
		if comentario == "" {
			return nil, ErrComentarioRequerido
		}
	default:
		return nil, ErrVeredictoInvalido
	}

	var trabajo *models.Trabajo
	err := s.repo.InTransaction(func(tx ReviewRepo) error {
		asignacion, err := tx.AsignacionPorID(asignacionID)
		if err != nil {
			return ErrAsignacionNoEncontrada
		}
		if asignacion.RevisorID != p.ID {
			return ErrAsignacionAjena
		}
		if !asignacion.Activa {
			return ErrAsignacionInactiva
		}
		if asignacion.TrabajoID != trabajoID {
			return ErrTrabajoNoEncontrado
		}

		trabajo, err = tx.TrabajoPorID(trabajoID)
		if err != nil {
			return ErrTrabajoNoEncontrado
		}
		if trabajo.EsTerminal() {
			return ErrTrabajoYaDictaminado
		}

		if err := tx.ActualizarEstadoTrabajo(trabajoID, veredicto, nil); err != nil {
			return err
		}
		trabajo.Estado = veredicto

		if veredicto == VeredictoAceptado || veredicto == VeredictoRechazado {
			asignacion.Activa = false
			if comentario != "" {
				asignacion.Comentario = &comentario
			}
			if err := tx.GuardarAsignacion(asignacion); err != nil {
				return err
			}
		}

		if comentario != "" {
			return tx.CrearComentario(&models.Comentario{
				TrabajoID: trabajoID,
				Contenido: comentario,
				CreateAt:  s.now(),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return trabajo, nil
}

// ResultadoRubrica is the outcome of scoring a work against the rubric.
type ResultadoRubrica struct {
	Porcentaje float64         `json:"porcentaje"`
	Veredicto  string          `json:"veredicto"`
	Trabajo    *models.Trabajo `json:"trabajo"`
}

// CalificarRubrica rates every active criterion of the work's grupo on a
// 1-5 scale, stores the resulting percentage as the assignment score and
// feeds the suggested verdict through the same capture path as
// RegistrarEvaluacion. A comment is mandatory.
func (s *ReviewService) CalificarRubrica(p Principal, trabajoID int, asignacionID string, valores map[int]int, comentario string) (*ResultadoRubrica, error) {
	comentario = strings.TrimSpace(comentario)
	if comentario == "" {
		return nil, ErrComentarioRequerido
	}

	var resultado ResultadoRubrica
	err := s.repo.InTransaction(func(tx ReviewRepo) error {
		asignacion, err := tx.AsignacionPorID(asignacionID)
		if err != nil {
			return ErrAsignacionNoEncontrada
		}
		if asignacion.RevisorID != p.ID {
			return ErrAsignacionAjena
		}
		if !asignacion.Activa {
			return ErrAsignacionInactiva
		}
		if asignacion.TrabajoID != trabajoID {
			return ErrTrabajoNoEncontrado
		}

		trabajo, err := tx.TrabajoPorID(trabajoID)
		if err != nil {
			return ErrTrabajoNoEncontrado
		}
		if trabajo.EsTerminal() {
			return ErrTrabajoYaDictaminado
		}

		criterios, err := tx.CriteriosActivos(trabajo.Tipo)
		if err != nil {
			return err
		}
		if len(criterios) == 0 {
			return ErrSinCriteriosActivos
		}

		suma := 0
		for _, criterio := range criterios {
			valor, ok := valores[criterio.CriterioID]
			if !ok {
				return ErrCriteriosIncompletos
			}
			if valor < 1 || valor > 5 {
				return ErrValorLikertInvalido
			}
			suma += valor
		}

		porcentaje := float64(suma) / float64(len(criterios)*5) * 100
		veredicto := veredictoSugerido(porcentaje)

		asignacion.Calificacion = &porcentaje
		asignacion.Comentario = &comentario
		if veredicto != VeredictoCambiosSolicitados {
			asignacion.Activa = false
		}
		if err := tx.GuardarAsignacion(asignacion); err != nil {
			return err
		}

		if err := tx.ActualizarEstadoTrabajo(trabajoID, veredicto, nil); err != nil {
			return err
		}
		trabajo.Estado = veredicto

		if err := tx.CrearComentario(&models.Comentario{
			TrabajoID: trabajoID,
			Contenido: comentario,
			CreateAt:  s.now(),
		}); err != nil {
			return err
		}

		resultado = ResultadoRubrica{Porcentaje: porcentaje, Veredicto: veredicto, Trabajo: trabajo}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &resultado, nil
}

func veredictoSugerido(porcentaje float64) string {
	switch {
	case porcentaje >= umbralAceptacion:
		return VeredictoAceptado
	case porcentaje >= umbralCambios:
		return VeredictoCambiosSolicitados
	default:
		return VeredictoRechazado
	}
}

type gormReviewRepo struct {
	db *gorm.DB
}

// NewGormReviewRepo builds the production repository. A nil db falls back
// to the global connection.
func NewGormReviewRepo(db *gorm.DB) ReviewRepo {
	if db == nil {
		db = config.DB
	}
	return &gormReviewRepo{db: db}
}

func (r *gormReviewRepo) InTransaction(fn func(ReviewRepo) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormReviewRepo{db: tx})
	})
}

func (r *gormReviewRepo) AsignacionPorID(asignacionID string) (*models.Asignacion, error) {
	var asignacion models.Asignacion
	if err := r.db.Where("asignacion_id = ?", asignacionID).First(&asignacion).Error; err != nil {
		return nil, err
	}
	return &asignacion, nil
}

func (r *gormReviewRepo) TrabajoPorID(trabajoID int) (*models.Trabajo, error) {
	var trabajo models.Trabajo
	if err := r.db.Where("trabajo_id = ? AND delete_at IS NULL", trabajoID).First(&trabajo).Error; err != nil {
		return nil, err
	}
	return &trabajo, nil
}

func (r *gormReviewRepo) GuardarAsignacion(a *models.Asignacion) error {
	return r.db.Save(a).Error
}

func (r *gormReviewRepo) ActualizarEstadoTrabajo(trabajoID int, estado string, intento *int) error {
	updates := map[string]interface{}{
		"estado":    estado,
		"update_at": time.Now(),
	}
	if intento != nil {
		updates["intento"] = *intento
	}
	return r.db.Model(&models.Trabajo{}).
		Where("trabajo_id = ?", trabajoID).
		Updates(updates).Error
}

func (r *gormReviewRepo) CrearComentario(c *models.Comentario) error {
	return r.db.Create(c).Error
}

func (r *gormReviewRepo) CriteriosActivos(grupo string) ([]models.CriterioEvaluacion, error) {
	var criterios []models.CriterioEvaluacion
	err := r.db.Where("grupo = ? AND activo = ?", grupo, true).
		Order("criterio_id ASC").
		Find(&criterios).Error
	return criterios, err
}

package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"sigca-api/config"
	"sigca-api/models"
)

// Fixed rejection reasons printed on the dictamen.
const (
	MotivoRechazoCalidad = "El trabajo no cumplió con los estándares de calidad requeridos conforme a la evaluación de los revisores."
	MotivoRechazoPlagio  = "Los niveles de inteligencia artificial y plagio detectados impiden la evaluación del trabajo por pares."
)

var (
	ErrTrabajoYaDictaminado     = errors.New("el trabajo ya cuenta con un dictamen final")
	ErrTrabajoNoDictaminable    = errors.New("el trabajo debe estar en revisión para recibir dictamen")
	ErrScreeningFaltante        = errors.New("debe registrar los niveles de IA y plagio antes de dictaminar")
	ErrSinAsignaciones          = errors.New("el trabajo no tiene asignaciones de revisión")
	ErrAsignacionesSinCalificar = errors.New("todas las asignaciones deben estar calificadas")
	ErrNivelScreeningInvalido   = errors.New("los niveles de IA y plagio deben estar entre 0 y 100")
)

// DecisionRepo is the persistence surface of the decision engine.
type DecisionRepo interface {
	InTransaction(fn func(DecisionRepo) error) error
	TrabajoPorID(trabajoID int) (*models.Trabajo, error)
	AutorDeTrabajo(trabajoID int) (*models.User, error)
	AsignacionesDeTrabajo(trabajoID int) ([]models.Asignacion, error)
	GuardarTrabajo(t *models.Trabajo) error
}

// ResultadoDictamen separates the two failure domains of a decision: the
// state change always committed when the call succeeds, while the
// notification is best effort and reports its own outcome.
type ResultadoDictamen struct {
	Trabajo           *models.Trabajo `json:"trabajo"`
	NotificacionOK    bool            `json:"notificacion_ok"`
	NotificacionError string          `json:"notificacion_error,omitempty"`
}

// DecisionService aggregates reviewer scores into a final grade and drives
// the terminal transitions of a work.
type DecisionService struct {
	repo     DecisionRepo
	renderer VerdictRenderer
	mailer   Mailer
	now      func() time.Time
}

func NewDecisionService(repo DecisionRepo, renderer VerdictRenderer, mailer Mailer) *DecisionService {
	return &DecisionService{repo: repo, renderer: renderer, mailer: mailer, now: time.Now}
}

// RegistrarScreening stores the AI and plagiarism levels of a work. Both
// values are required in [0,100]; prior values are overwritten. No state
// transition happens here.
func (s *DecisionService) RegistrarScreening(p Principal, trabajoID int, nvlIA, nvlPlagio float64) (*models.Trabajo, error) {
	if !p.PuedeDictaminar() {
		return nil, ErrNoAutorizado
	}
	if nvlIA < 0 || nvlIA > 100 || nvlPlagio < 0 || nvlPlagio > 100 {
		return nil, ErrNivelScreeningInvalido
	}

	var trabajo *models.Trabajo
	err := s.repo.InTransaction(func(tx DecisionRepo) error {
		var err error
		trabajo, err = tx.TrabajoPorID(trabajoID)
		if err != nil {
			return ErrTrabajoNoEncontrado
		}

		trabajo.NvlIA = &nvlIA
		trabajo.NvlPlagio = &nvlPlagio
		return tx.GuardarTrabajo(trabajo)
	})
	if err != nil {
		return nil, err
	}

	return trabajo, nil
}

// AceptarTrabajo accepts a work. Preconditions, checked in order with no
// mutation on the first failure: the work exists, has no terminal dictamen
// and sits in EN_REVISION (a work with requested changes must be resubmitted
// first), screening levels are recorded, and at least one assignment exists
// with every assignment scored. The final grade is the mean of all
// assignment scores rounded to two decimals. The state change commits
// before the verdict email is attempted; a send failure never rolls it
// back.
func (s *DecisionService) AceptarTrabajo(p Principal, trabajoID int, presencial bool) (*ResultadoDictamen, error) {
	if !p.PuedeDictaminar() {
		return nil, ErrNoAutorizado
	}

	var trabajo *models.Trabajo
	var autor *models.User
	var asignaciones []models.Asignacion

	err := s.repo.InTransaction(func(tx DecisionRepo) error {
		var err error
		trabajo, err = tx.TrabajoPorID(trabajoID)
		if err != nil {
			return ErrTrabajoNoEncontrado
		}
		if trabajo.EsTerminal() {
			return ErrTrabajoYaDictaminado
		}
		if trabajo.Estado != models.EstadoEnRevision {
			return ErrTrabajoNoDictaminable
		}
		if !trabajo.ScreeningRegistrado() {
			return ErrScreeningFaltante
		}

		asignaciones, err = tx.AsignacionesDeTrabajo(trabajoID)
		if err != nil {
			return err
		}
		if len(asignaciones) == 0 {
			return ErrSinAsignaciones
		}
		for _, asignacion := range asignaciones {
			if !asignacion.Calificada() {
				return ErrAsignacionesSinCalificar
			}
		}

		final := promedioCalificaciones(asignaciones)
		trabajo.Estado = models.EstadoAceptado
		trabajo.CalificacionFinal = &final
		trabajo.Presencial = &presencial

		if err := tx.GuardarTrabajo(trabajo); err != nil {
			return err
		}

		autor, err = tx.AutorDeTrabajo(trabajoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resultado := &ResultadoDictamen{Trabajo: trabajo, NotificacionOK: true}

	data := VeredictoData{
		Autor:        autor.NombreCompleto(),
		Titulo:       trabajo.Titulo,
		Coautores:    coautoresLabel(trabajo.Coautores),
		Modalidad:    modalidadLabel(presencial),
		Calificacion: trabajo.CalificacionFinal,
		Fecha:        s.now(),
		Comentarios:  comentariosDeAsignaciones(asignaciones),
	}

	pdf, err := s.renderer.RenderAceptacion(data)
	if err != nil {
		s.registrarFalloNotificacion(resultado, trabajoID, fmt.Errorf("render dictamen: %w", err))
		return resultado, nil
	}

	if err := s.mailer.Send(
		[]string{autor.Email},
		"Dictamen de aceptación - SIGCA",
		cuerpoVeredicto(autor.NombreCompleto(), trabajo.Titulo, "ACEPTADO"),
		[]config.Attachment{{Filename: "dictamen_aceptacion.pdf", Content: pdf}},
	); err != nil {
		s.registrarFalloNotificacion(resultado, trabajoID, err)
	}

	return resultado, nil
}

// RechazarTrabajo rejects a work. With assignments present every one must
// be scored and the final grade is their mean; with none (rejection on
// screening alone) the final grade is zero and the reason cites the AI and
// plagiarism levels. Screening must be recorded in both cases.
func (s *DecisionService) RechazarTrabajo(p Principal, trabajoID int) (*ResultadoDictamen, error) {
	if !p.PuedeDictaminar() {
		return nil, ErrNoAutorizado
	}

	var trabajo *models.Trabajo
	var autor *models.User
	var asignaciones []models.Asignacion
	var motivo string

	err := s.repo.InTransaction(func(tx DecisionRepo) error {
		var err error
		trabajo, err = tx.TrabajoPorID(trabajoID)
		if err != nil {
			return ErrTrabajoNoEncontrado
		}
		if trabajo.EsTerminal() {
			return ErrTrabajoYaDictaminado
		}
		if trabajo.Estado != models.EstadoEnRevision {
			return ErrTrabajoNoDictaminable
		}
		if !trabajo.ScreeningRegistrado() {
			return ErrScreeningFaltante
		}

		asignaciones, err = tx.AsignacionesDeTrabajo(trabajoID)
		if err != nil {
			return err
		}

		var final float64
		if len(asignaciones) > 0 {
			for _, asignacion := range asignaciones {
				if !asignacion.Calificada() {
					return ErrAsignacionesSinCalificar
				}
			}
			final = promedioCalificaciones(asignaciones)
			motivo = MotivoRechazoCalidad
		} else {
			final = 0
			motivo = MotivoRechazoPlagio
		}

		trabajo.Estado = models.EstadoRechazado
		trabajo.CalificacionFinal = &final

		if err := tx.GuardarTrabajo(trabajo); err != nil {
			return err
		}

		autor, err = tx.AutorDeTrabajo(trabajoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resultado := &ResultadoDictamen{Trabajo: trabajo, NotificacionOK: true}

	data := VeredictoData{
		Autor:       autor.NombreCompleto(),
		Titulo:      trabajo.Titulo,
		Coautores:   coautoresLabel(trabajo.Coautores),
		Motivo:      motivo,
		Fecha:       s.now(),
		Comentarios: comentariosDeAsignaciones(asignaciones),
	}
	// The grade only appears on the dictamen when reviewers actually scored
	// the work.
	if len(asignaciones) > 0 {
		data.Calificacion = trabajo.CalificacionFinal
	}

	pdf, err := s.renderer.RenderRechazo(data)
	if err != nil {
		s.registrarFalloNotificacion(resultado, trabajoID, fmt.Errorf("render dictamen: %w", err))
		return resultado, nil
	}

	if err := s.mailer.Send(
		[]string{autor.Email},
		"Dictamen de rechazo - SIGCA",
		cuerpoVeredicto(autor.NombreCompleto(), trabajo.Titulo, "RECHAZADO"),
		[]config.Attachment{{Filename: "dictamen_rechazo.pdf", Content: pdf}},
	); err != nil {
		s.registrarFalloNotificacion(resultado, trabajoID, err)
	}

	return resultado, nil
}

func (s *DecisionService) registrarFalloNotificacion(r *ResultadoDictamen, trabajoID int, err error) {
	log.Printf("Warning: dictamen de trabajo %d registrado pero la notificación falló: %v", trabajoID, err)
	r.NotificacionOK = false
	r.NotificacionError = err.Error()
}

func promedioCalificaciones(asignaciones []models.Asignacion) float64 {
	suma := 0.0
	for _, asignacion := range asignaciones {
		suma += *asignacion.Calificacion
	}
	media := suma / float64(len(asignaciones))
	return math.Round(media*100) / 100
}

func comentariosDeAsignaciones(asignaciones []models.Asignacion) []string {
	var comentarios []string
	for _, asignacion := range asignaciones {
		if asignacion.Comentario != nil && *asignacion.Comentario != "" {
			comentarios = append(comentarios, *asignacion.Comentario)
		}
	}
	return comentarios
}

func coautoresLabel(coautores string) string {
	if coautores == "" {
		return "Sin coautores"
	}
	return coautores
}

func modalidadLabel(presencial bool) string {
	if presencial {
		return "Presencial"
	}
	return "Virtual"
}

type gormDecisionRepo struct {
	db *gorm.DB
}

// NewGormDecisionRepo builds the production repository. A nil db falls back
// to the global connection.
func NewGormDecisionRepo(db *gorm.DB) DecisionRepo {
	if db == nil {
		db = config.DB
	}
	return &gormDecisionRepo{db: db}
}

func (r *gormDecisionRepo) InTransaction(fn func(DecisionRepo) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormDecisionRepo{db: tx})
	})
}

func (r *gormDecisionRepo) TrabajoPorID(trabajoID int) (*models.Trabajo, error) {
	var trabajo models.Trabajo
	if err := r.db.Where("trabajo_id = ? AND delete_at IS NULL", trabajoID).First(&trabajo).Error; err != nil {
		return nil, err
	}
	return &trabajo, nil
}

func (r *gormDecisionRepo) AutorDeTrabajo(trabajoID int) (*models.User, error) {
	var trabajo models.Trabajo
	if err := r.db.Preload("Autor").
		Where("trabajo_id = ?", trabajoID).First(&trabajo).Error; err != nil {
		return nil, err
	}
	if trabajo.Autor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return trabajo.Autor, nil
}

func (r *gormDecisionRepo) AsignacionesDeTrabajo(trabajoID int) ([]models.Asignacion, error) {
	var asignaciones []models.Asignacion
	err := r.db.Where("trabajo_id = ?", trabajoID).
		Order("create_at ASC").
		Find(&asignaciones).Error
	return asignaciones, err
}

func (r *gormDecisionRepo) GuardarTrabajo(t *models.Trabajo) error {
	now := time.Now()
	t.UpdateAt = &now
	return r.db.Save(t).Error
}

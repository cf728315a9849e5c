package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sigca-api/config"
	"sigca-api/models"
	"sigca-api/utils"
)

var (
	ErrTrabajoNoEncontrado    = errors.New("el trabajo no existe")
	ErrAsignacionNoEncontrada = errors.New("la asignación no existe")
	ErrListaRevisoresVacia    = errors.New("debe indicar al menos un revisor")
	ErrRevisorDuplicado       = errors.New("la lista contiene revisores repetidos")
	ErrRevisorNoEncontrado    = errors.New("el revisor no existe o no tiene rol de revisor")
	ErrRevisorYaAsignado      = errors.New("el revisor ya tiene una asignación activa para este trabajo")
	ErrRevisorSaturado        = fmt.Errorf("el revisor ya alcanzó el máximo de %d asignaciones activas", models.MaxAsignacionesActivas)
)

// Reviewer availability states.
const (
	RevisorDisponible  = "DISPONIBLE"
	RevisorIndispuesto = "INDISPUESTO"
)

// RevisorCarga is a reviewer annotated with the current active-assignment
// load.
type RevisorCarga struct {
	models.User
	AsignacionesActivas int64  `json:"asignaciones_activas"`
	Disponible          bool   `json:"disponible"`
	Estado              string `json:"estado"`
}

// AssignmentRepo is the persistence surface of the assignment manager. The
// GORM implementation runs every InTransaction body in one database
// transaction and locks the rows the capacity and duplicate checks read, so
// the checks and the inserts commit as one unit even under concurrent
// batches.
type AssignmentRepo interface {
	InTransaction(fn func(AssignmentRepo) error) error
	TrabajoPorID(trabajoID int) (*models.Trabajo, error)
	RevisorPorID(revisorID string) (*models.User, error)
	AsignacionesActivasDeRevisor(revisorID string) (int64, error)
	ExisteActivaParaTrabajo(trabajoID int, revisorID string) (bool, error)
	SiguienteSecuencia(prefijo string) (int64, error)
	Crear(a *models.Asignacion) error
	Eliminar(asignacionID string) (int64, error)
	TrabajosSinAsignar() ([]models.Trabajo, error)
	RevisoresConCarga() ([]RevisorCarga, error)
}

// AssignmentService creates and removes reviewer-to-work assignments.
type AssignmentService struct {
	repo AssignmentRepo
	now  func() time.Time
}

func NewAssignmentService(repo AssignmentRepo) *AssignmentService {
	return &AssignmentService{repo: repo, now: time.Now}
}

// CrearAsignaciones links every reviewer in revisorIDs to the work. The
// whole batch fails without inserting anything when the list is empty or
// repeated, a reviewer is unknown, already holds an active assignment for
// the work, or sits at the active-assignment cap.
func (s *AssignmentService) CrearAsignaciones(p Principal, trabajoID int, revisorIDs []string) ([]models.Asignacion, error) {
	if !p.PuedeDictaminar() {
		return nil, ErrNoAutorizado
	}
	if len(revisorIDs) == 0 {
		return nil, ErrListaRevisoresVacia
	}

	vistos := make(map[string]bool, len(revisorIDs))
	for _, id := range revisorIDs {
		if vistos[id] {
			return nil, ErrRevisorDuplicado
		}
		vistos[id] = true
	}

	now := s.now()
	var creadas []models.Asignacion

	err := s.repo.InTransaction(func(tx AssignmentRepo) error {
		if _, err := tx.TrabajoPorID(trabajoID); err != nil {
			return ErrTrabajoNoEncontrado
		}

		for _, revisorID := range revisorIDs {
			revisor, err := tx.RevisorPorID(revisorID)
			if err != nil || revisor.Rol != models.RolRevisor {
				return ErrRevisorNoEncontrado
			}

			activas, err := tx.AsignacionesActivasDeRevisor(revisorID)
			if err != nil {
				return err
			}
			if activas >= models.MaxAsignacionesActivas {
				return ErrRevisorSaturado
			}

			asignado, err := tx.ExisteActivaParaTrabajo(trabajoID, revisorID)
			if err != nil {
				return err
			}
			if asignado {
				return ErrRevisorYaAsignado
			}
		}

		prefijo := utils.PrefijoAnio(now)
		seq, err := tx.SiguienteSecuencia(prefijo)
		if err != nil {
			return err
		}

		for i, revisorID := range revisorIDs {
			asignacion := models.Asignacion{
				AsignacionID: utils.FolioAsignacion(now, seq+int64(i)),
				TrabajoID:    trabajoID,
				RevisorID:    revisorID,
				Activa:       true,
				CreateAt:     &now,
			}
			if err := tx.Crear(&asignacion); err != nil {
				return err
			}
			creadas = append(creadas, asignacion)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return creadas, nil
}

// EliminarAsignacion hard-deletes an assignment. A scored assignment loses
// its score.
func (s *AssignmentService) EliminarAsignacion(p Principal, asignacionID string) error {
	if !p.PuedeDictaminar() {
		return ErrNoAutorizado
	}

	rows, err := s.repo.Eliminar(asignacionID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAsignacionNoEncontrada
	}

	return nil
}

// TrabajosSinAsignar lists works in review with no active assignment.
func (s *AssignmentService) TrabajosSinAsignar(p Principal) ([]models.Trabajo, error) {
	if !p.PuedeDictaminar() {
		return nil, ErrNoAutorizado
	}
	return s.repo.TrabajosSinAsignar()
}

// RevisoresDisponibles lists reviewers with their current load.
func (s *AssignmentService) RevisoresDisponibles(p Principal) ([]RevisorCarga, error) {
	if !p.PuedeDictaminar() {
		return nil, ErrNoAutorizado
	}

	revisores, err := s.repo.RevisoresConCarga()
	if err != nil {
		return nil, err
	}

	for i := range revisores {
		revisores[i].Disponible = revisores[i].AsignacionesActivas < models.MaxAsignacionesActivas
		if revisores[i].Disponible {
			revisores[i].Estado = RevisorDisponible
		} else {
			revisores[i].Estado = RevisorIndispuesto
		}
	}

	return revisores, nil
}

type gormAssignmentRepo struct {
	db *gorm.DB
}

// NewGormAssignmentRepo builds the production repository. A nil db falls
// back to the global connection.
func NewGormAssignmentRepo(db *gorm.DB) AssignmentRepo {
	if db == nil {
		db = config.DB
	}
	return &gormAssignmentRepo{db: db}
}

func (r *gormAssignmentRepo) InTransaction(fn func(AssignmentRepo) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormAssignmentRepo{db: tx})
	})
}

func (r *gormAssignmentRepo) TrabajoPorID(trabajoID int) (*models.Trabajo, error) {
	var trabajo models.Trabajo
	if err := r.db.Where("trabajo_id = ? AND delete_at IS NULL", trabajoID).First(&trabajo).Error; err != nil {
		return nil, err
	}
	return &trabajo, nil
}

func (r *gormAssignmentRepo) RevisorPorID(revisorID string) (*models.User, error) {
	var revisor models.User
	if err := r.db.Where("user_id = ? AND delete_at IS NULL", revisorID).First(&revisor).Error; err != nil {
		return nil, err
	}
	return &revisor, nil
}

// AsignacionesActivasDeRevisor counts with FOR UPDATE so two concurrent
// batches cannot both read a count under the cap and insert past it.
func (r *gormAssignmentRepo) AsignacionesActivasDeRevisor(revisorID string) (int64, error) {
	var ids []string
	err := r.db.Model(&models.Asignacion{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("revisor_id = ? AND activa = ?", revisorID, true).
		Pluck("asignacion_id", &ids).Error
	return int64(len(ids)), err
}

func (r *gormAssignmentRepo) ExisteActivaParaTrabajo(trabajoID int, revisorID string) (bool, error) {
	var ids []string
	err := r.db.Model(&models.Asignacion{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trabajo_id = ? AND revisor_id = ? AND activa = ?", trabajoID, revisorID, true).
		Pluck("asignacion_id", &ids).Error
	return len(ids) > 0, err
}

// SiguienteSecuencia derives the next folio number from the highest suffix
// issued under the prefix. Deleted assignments leave gaps instead of making
// the next folio collide with a surviving one.
func (r *gormAssignmentRepo) SiguienteSecuencia(prefijo string) (int64, error) {
	var max int64
	err := r.db.Model(&models.Asignacion{}).
		Where("asignacion_id LIKE ?", prefijo+"%").
		Select("COALESCE(MAX(CAST(SUBSTRING(asignacion_id, ?) AS UNSIGNED)), 0)", len(prefijo)+1).
		Scan(&max).Error
	return max + 1, err
}

func (r *gormAssignmentRepo) Crear(a *models.Asignacion) error {
	return r.db.Create(a).Error
}

func (r *gormAssignmentRepo) Eliminar(asignacionID string) (int64, error) {
	result := r.db.Where("asignacion_id = ?", asignacionID).Delete(&models.Asignacion{})
	return result.RowsAffected, result.Error
}

func (r *gormAssignmentRepo) TrabajosSinAsignar() ([]models.Trabajo, error) {
	var trabajos []models.Trabajo
	err := r.db.Preload("Autor").Preload("Convocatoria").
		Where("estado = ? AND delete_at IS NULL", models.EstadoEnRevision).
		Where("trabajo_id NOT IN (?)",
			r.db.Model(&models.Asignacion{}).Select("trabajo_id").Where("activa = ?", true)).
		Find(&trabajos).Error
	return trabajos, err
}

func (r *gormAssignmentRepo) RevisoresConCarga() ([]RevisorCarga, error) {
	var revisores []models.User
	if err := r.db.Where("rol = ? AND activo = ? AND delete_at IS NULL", models.RolRevisor, true).
		Find(&revisores).Error; err != nil {
		return nil, err
	}

	carga := make([]RevisorCarga, 0, len(revisores))
	for _, revisor := range revisores {
		activas, err := r.AsignacionesActivasDeRevisor(revisor.UserID)
		if err != nil {
			return nil, err
		}
		carga = append(carga, RevisorCarga{User: revisor, AsignacionesActivas: activas})
	}

	return carga, nil
}

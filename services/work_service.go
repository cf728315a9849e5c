package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sigca-api/config"
	"sigca-api/models"
)

var (
	ErrConvocatoriaNoEncontrada = errors.New("la convocatoria no existe")
	ErrConvocatoriaCerrada      = errors.New("la convocatoria no se encuentra abierta")
	ErrTrabajoDuplicado         = errors.New("ya existe un trabajo registrado para esta convocatoria")
	ErrTipoTrabajoInvalido      = errors.New("el tipo de trabajo debe ser DIFUSION o DIVULGACION")
	ErrTrabajoNoModificable     = errors.New("el trabajo solo puede reenviarse cuando tiene cambios solicitados")
)

// WorkRepo is the persistence surface of submission intake.
type WorkRepo interface {
	InTransaction(fn func(WorkRepo) error) error
	ConvocatoriaPorID(convocatoriaID int) (*models.Convocatoria, error)
	ExisteTrabajoDeAutor(userID string, convocatoriaID int) (bool, error)
	TrabajoPorID(trabajoID int) (*models.Trabajo, error)
	CrearTrabajo(t *models.Trabajo) error
	GuardarTrabajo(t *models.Trabajo) error
}

// ArchivoSubido is an uploaded manuscript streamed into blob storage.
type ArchivoSubido struct {
	Nombre      string
	ContentType string
	Tamano      int64
	Contenido   io.Reader
}

// WorkService registers submissions against open calls.
type WorkService struct {
	repo    WorkRepo
	storage config.FileStorage
	now     func() time.Time
}

func NewWorkService(repo WorkRepo, storage config.FileStorage) *WorkService {
	return &WorkService{repo: repo, storage: storage, now: time.Now}
}

// CrearTrabajo persists a new submission in EN_REVISION. The call window
// must be open and the author may hold only one work per call.
func (s *WorkService) CrearTrabajo(ctx context.Context, p Principal, convocatoriaID int, titulo, tipo, coautores string, archivo ArchivoSubido) (*models.Trabajo, error) {
	if tipo != models.TipoDifusion && tipo != models.TipoDivulgacion {
		return nil, ErrTipoTrabajoInvalido
	}

	now := s.now()
	var trabajo *models.Trabajo

	err := s.repo.InTransaction(func(tx WorkRepo) error {
		convocatoria, err := tx.ConvocatoriaPorID(convocatoriaID)
		if err != nil {
			return ErrConvocatoriaNoEncontrada
		}
		if !convocatoria.Abierta(now) {
			return ErrConvocatoriaCerrada
		}

		existe, err := tx.ExisteTrabajoDeAutor(p.ID, convocatoriaID)
		if err != nil {
			return err
		}
		if existe {
			return ErrTrabajoDuplicado
		}

		key := claveArchivo(archivo.Nombre)
		if err := s.storage.Store(ctx, key, archivo.Contenido, archivo.Tamano, archivo.ContentType); err != nil {
			return fmt.Errorf("failed to store manuscript: %w", err)
		}

		trabajo = &models.Trabajo{
			Titulo:         titulo,
			Tipo:           tipo,
			Coautores:      coautores,
			UserID:         p.ID,
			ConvocatoriaID: convocatoriaID,
			Archivo:        key,
			Estado:         models.EstadoEnRevision,
			Intento:        1,
			CreateAt:       &now,
			UpdateAt:       &now,
		}
		return tx.CrearTrabajo(trabajo)
	})
	if err != nil {
		return nil, err
	}

	return trabajo, nil
}

// ReenviarTrabajo uploads a corrected manuscript for a work with requested
// changes, bumps the attempt counter and moves it back to EN_REVISION. The
// superseded blob is removed best effort once the new version committed.
func (s *WorkService) ReenviarTrabajo(ctx context.Context, p Principal, trabajoID int, archivo ArchivoSubido) (*models.Trabajo, error) {
	now := s.now()
	var trabajo *models.Trabajo
	var anterior string

	err := s.repo.InTransaction(func(tx WorkRepo) error {
		var err error
		trabajo, err = tx.TrabajoPorID(trabajoID)
		if err != nil {
			return ErrTrabajoNoEncontrado
		}
		if trabajo.UserID != p.ID {
			return ErrNoAutorizado
		}
		if trabajo.Estado != models.EstadoCambiosSolicitados {
			return ErrTrabajoNoModificable
		}

		key := claveArchivo(archivo.Nombre)
		if err := s.storage.Store(ctx, key, archivo.Contenido, archivo.Tamano, archivo.ContentType); err != nil {
			return fmt.Errorf("failed to store manuscript: %w", err)
		}

		anterior = trabajo.Archivo
		trabajo.Archivo = key
		trabajo.Intento++
		trabajo.Estado = models.EstadoEnRevision
		trabajo.UpdateAt = &now
		return tx.GuardarTrabajo(trabajo)
	})
	if err != nil {
		return nil, err
	}

	if anterior != "" {
		if err := s.storage.Delete(ctx, anterior); err != nil {
			log.Printf("Warning: no fue posible eliminar el archivo anterior %s: %v", anterior, err)
		}
	}

	return trabajo, nil
}

func claveArchivo(nombre string) string {
	ext := strings.ToLower(filepath.Ext(nombre))
	return "trabajos/" + uuid.New().String() + ext
}

type gormWorkRepo struct {
	db *gorm.DB
}

// NewGormWorkRepo builds the production repository. A nil db falls back to
// the global connection.
func NewGormWorkRepo(db *gorm.DB) WorkRepo {
	if db == nil {
		db = config.DB
	}
	return &gormWorkRepo{db: db}
}

func (r *gormWorkRepo) InTransaction(fn func(WorkRepo) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormWorkRepo{db: tx})
	})
}

func (r *gormWorkRepo) ConvocatoriaPorID(convocatoriaID int) (*models.Convocatoria, error) {
	var convocatoria models.Convocatoria
	if err := r.db.Where("convocatoria_id = ? AND delete_at IS NULL", convocatoriaID).
		First(&convocatoria).Error; err != nil {
		return nil, err
	}
	return &convocatoria, nil
}

func (r *gormWorkRepo) ExisteTrabajoDeAutor(userID string, convocatoriaID int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Trabajo{}).
		Where("user_id = ? AND convocatoria_id = ? AND delete_at IS NULL", userID, convocatoriaID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormWorkRepo) TrabajoPorID(trabajoID int) (*models.Trabajo, error) {
	var trabajo models.Trabajo
	if err := r.db.Where("trabajo_id = ? AND delete_at IS NULL", trabajoID).First(&trabajo).Error; err != nil {
		return nil, err
	}
	return &trabajo, nil
}

func (r *gormWorkRepo) CrearTrabajo(t *models.Trabajo) error {
	return r.db.Create(t).Error
}

func (r *gormWorkRepo) GuardarTrabajo(t *models.Trabajo) error {
	return r.db.Save(t).Error
}

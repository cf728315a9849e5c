package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sigca-api/config"
	"sigca-api/models"
)

// Registration fees in MXN. Students (control number on file) pay the
// discounted tier.
const (
	TarifaEstudiante = 1500.00
	TarifaGeneral    = 2500.00
)

var ErrUsuarioNoEncontrado = errors.New("el usuario no existe")

// PaymentRepo is the persistence surface of payment reference generation.
type PaymentRepo interface {
	UsuarioPorID(userID string) (*models.User, error)
	TrabajoPorID(trabajoID int) (*models.Trabajo, error)
	GuardarReferencia(trabajoID int, referencia string) error
}

// ReferenciaGenerada is the outcome of generating a payment reference.
type ReferenciaGenerada struct {
	Referencia string  `json:"referencia"`
	Monto      float64 `json:"monto"`
	PDF        []byte  `json:"-"`
}

// PaymentService issues payment references for congress registration. Not
// gated by work state; the author may request one at any time.
type PaymentService struct {
	repo     PaymentRepo
	renderer PaymentRenderer
	now      func() time.Time
}

func NewPaymentService(repo PaymentRepo, renderer PaymentRenderer) *PaymentService {
	return &PaymentService{repo: repo, renderer: renderer, now: time.Now}
}

// GenerarReferenciaPago computes the fee tier for the caller, renders the
// payment sheet and stores the reference string on the work. Only the
// author of the work may request it.
func (s *PaymentService) GenerarReferenciaPago(p Principal, trabajoID int) (*ReferenciaGenerada, error) {
	user, err := s.repo.UsuarioPorID(p.ID)
	if err != nil {
		return nil, ErrUsuarioNoEncontrado
	}

	trabajo, err := s.repo.TrabajoPorID(trabajoID)
	if err != nil {
		return nil, ErrTrabajoNoEncontrado
	}
	if trabajo.UserID != p.ID {
		return nil, ErrNoAutorizado
	}

	monto := TarifaGeneral
	if user.EsEstudiante() {
		monto = TarifaEstudiante
	}

	now := s.now()
	referencia := referenciaExterna(now, trabajoID)

	pdf, err := s.renderer.RenderReferenciaPago(ReferenciaPagoData{
		Autor:      user.NombreCompleto(),
		Titulo:     trabajo.Titulo,
		Referencia: referencia,
		Monto:      monto,
		Fecha:      now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.GuardarReferencia(trabajoID, referencia); err != nil {
		return nil, err
	}

	return &ReferenciaGenerada{Referencia: referencia, Monto: monto, PDF: pdf}, nil
}

// referenciaExterna stands in for the banking provider reference endpoint,
// which is not yet contracted.
func referenciaExterna(now time.Time, trabajoID int) string {
	return fmt.Sprintf("SIGCA-%d-%06d", now.Year(), trabajoID)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

// NewGormPaymentRepo builds the production repository. A nil db falls back
// to the global connection.
func NewGormPaymentRepo(db *gorm.DB) PaymentRepo {
	if db == nil {
		db = config.DB
	}
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) UsuarioPorID(userID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormPaymentRepo) TrabajoPorID(trabajoID int) (*models.Trabajo, error) {
	var trabajo models.Trabajo
	if err := r.db.Where("trabajo_id = ? AND delete_at IS NULL", trabajoID).First(&trabajo).Error; err != nil {
		return nil, err
	}
	return &trabajo, nil
}

func (r *gormPaymentRepo) GuardarReferencia(trabajoID int, referencia string) error {
	return r.db.Model(&models.Trabajo{}).
		Where("trabajo_id = ?", trabajoID).
		Updates(map[string]interface{}{
			"referencia_pago": referencia,
			"update_at":       time.Now(),
		}).Error
}

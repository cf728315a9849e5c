package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"sigca-api/config"
	"sigca-api/models"
)

var (
	ErrTokenInvalido = errors.New("el token no es válido o ya fue utilizado")
	ErrTokenExpirado = errors.New("el token ha expirado")
)

// TokenRepo is the persistence surface of emailed tokens.
type TokenRepo interface {
	InTransaction(fn func(TokenRepo) error) error
	RevocarActivos(email, tipo string) error
	Crear(t *models.Token) error
	BuscarPorSecreto(secreto, tipo string) (*models.Token, error)
	MarcarUsado(tokenID int) error
}

// TokenService issues and redeems the single-use secrets used for email
// verification, password reset and reviewer invitations.
type TokenService struct {
	now      func() time.Time
	repo     TokenRepo
	generate func() (string, error)
}

func NewTokenService(repo TokenRepo) *TokenService {
	return &TokenService{repo: repo, now: time.Now, generate: generarSecreto}
}

// Emitir creates a token for the email, revoking any previous active token
// of the same type. Returns the plaintext secret for the outgoing email;
// only its record is persisted.
func (s *TokenService) Emitir(email, tipo string) (string, error) {
	secreto, err := s.generate()
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.repo.InTransaction(func(tx TokenRepo) error {
		if err := tx.RevocarActivos(email, tipo); err != nil {
			return err
		}
		return tx.Crear(&models.Token{
			Email:      email,
			Token:      secreto,
			Tipo:       tipo,
			Expiracion: now.Add(models.TokenVigencia),
			CreateAt:   now,
		})
	})
	if err != nil {
		return "", err
	}

	return secreto, nil
}

// Redimir validates and spends a token, returning the email it was issued
// for.
func (s *TokenService) Redimir(secreto, tipo string) (string, error) {
	var email string
	err := s.repo.InTransaction(func(tx TokenRepo) error {
		token, err := tx.BuscarPorSecreto(secreto, tipo)
		if err != nil {
			return ErrTokenInvalido
		}
		if token.Usado {
			return ErrTokenInvalido
		}
		if !s.now().Before(token.Expiracion) {
			return ErrTokenExpirado
		}

		email = token.Email
		return tx.MarcarUsado(token.TokenID)
	})
	if err != nil {
		return "", err
	}

	return email, nil
}

func generarSecreto() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type gormTokenRepo struct {
	db *gorm.DB
}

// NewGormTokenRepo builds the production repository. A nil db falls back to
// the global connection.
func NewGormTokenRepo(db *gorm.DB) TokenRepo {
	if db == nil {
		db = config.DB
	}
	return &gormTokenRepo{db: db}
}

func (r *gormTokenRepo) InTransaction(fn func(TokenRepo) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTokenRepo{db: tx})
	})
}

func (r *gormTokenRepo) RevocarActivos(email, tipo string) error {
	return r.db.Model(&models.Token{}).
		Where("email = ? AND tipo = ? AND usado = ?", email, tipo, false).
		Update("usado", true).Error
}

func (r *gormTokenRepo) Crear(t *models.Token) error {
	return r.db.Create(t).Error
}

func (r *gormTokenRepo) BuscarPorSecreto(secreto, tipo string) (*models.Token, error) {
	var token models.Token
	if err := r.db.Where("token = ? AND tipo = ?", secreto, tipo).
		Order("create_at DESC").
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *gormTokenRepo) MarcarUsado(tokenID int) error {
	return r.db.Model(&models.Token{}).
		Where("token_id = ?", tokenID).
		Update("usado", true).Error
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigca-api/models"
)

type fakeTokenRepo struct {
	tokens []*models.Token
	nextID int
}

func (f *fakeTokenRepo) InTransaction(fn func(TokenRepo) error) error {
	return fn(f)
}

func (f *fakeTokenRepo) RevocarActivos(email, tipo string) error {
	for _, t := range f.tokens {
		if t.Email == email && t.Tipo == tipo && !t.Usado {
			t.Usado = true
		}
	}
	return nil
}

func (f *fakeTokenRepo) Crear(t *models.Token) error {
	f.nextID++
	t.TokenID = f.nextID
	f.tokens = append(f.tokens, t)
	return nil
}

func (f *fakeTokenRepo) BuscarPorSecreto(secreto, tipo string) (*models.Token, error) {
	for i := len(f.tokens) - 1; i >= 0; i-- {
		if f.tokens[i].Token == secreto && f.tokens[i].Tipo == tipo {
			return f.tokens[i], nil
		}
	}
	return nil, ErrTokenInvalido
}

func (f *fakeTokenRepo) MarcarUsado(tokenID int) error {
	for _, t := range f.tokens {
		if t.TokenID == tokenID {
			t.Usado = true
		}
	}
	return nil
}

func newTokenServiceForTest(repo TokenRepo) (*TokenService, *time.Time) {
	momento := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	svc := NewTokenService(repo)
	svc.now = func() time.Time { return momento }
	contador := 0
	svc.generate = func() (string, error) {
		contador++
		return "secreto-" + string(rune('0'+contador)), nil
	}
	return svc, &momento
}

func TestEmitirCreaTokenConVigencia(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, momento := newTokenServiceForTest(repo)

	secreto, err := svc.Emitir("ana@uni.mx", models.TokenVerificacion)

	require.NoError(t, err)
	assert.NotEmpty(t, secreto)
	require.Len(t, repo.tokens, 1)
	token := repo.tokens[0]
	assert.Equal(t, "ana@uni.mx", token.Email)
	assert.Equal(t, models.TokenVerificacion, token.Tipo)
	assert.False(t, token.Usado)
	assert.Equal(t, momento.Add(models.TokenVigencia), token.Expiracion)
}

func TestEmitirRevocaTokenAnterior(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, _ := newTokenServiceForTest(repo)

	primero, err := svc.Emitir("ana@uni.mx", models.TokenRecuperacion)
	require.NoError(t, err)
	segundo, err := svc.Emitir("ana@uni.mx", models.TokenRecuperacion)
	require.NoError(t, err)
	assert.NotEqual(t, primero, segundo)

	_, err = svc.Redimir(primero, models.TokenRecuperacion)
	assert.ErrorIs(t, err, ErrTokenInvalido)

	email, err := svc.Redimir(segundo, models.TokenRecuperacion)
	require.NoError(t, err)
	assert.Equal(t, "ana@uni.mx", email)
}

func TestEmitirNoRevocaOtrosTipos(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, _ := newTokenServiceForTest(repo)

	verificacion, err := svc.Emitir("ana@uni.mx", models.TokenVerificacion)
	require.NoError(t, err)
	_, err = svc.Emitir("ana@uni.mx", models.TokenRecuperacion)
	require.NoError(t, err)

	email, err := svc.Redimir(verificacion, models.TokenVerificacion)
	require.NoError(t, err)
	assert.Equal(t, "ana@uni.mx", email)
}

func TestRedimirEsDeUnSoloUso(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, _ := newTokenServiceForTest(repo)

	secreto, err := svc.Emitir("ana@uni.mx", models.TokenVerificacion)
	require.NoError(t, err)

	_, err = svc.Redimir(secreto, models.TokenVerificacion)
	require.NoError(t, err)

	_, err = svc.Redimir(secreto, models.TokenVerificacion)
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestRedimirTokenExpirado(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, momento := newTokenServiceForTest(repo)

	secreto, err := svc.Emitir("ana@uni.mx", models.TokenVerificacion)
	require.NoError(t, err)

	*momento = momento.Add(models.TokenVigencia + time.Second)
	_, err = svc.Redimir(secreto, models.TokenVerificacion)
	assert.ErrorIs(t, err, ErrTokenExpirado)
}

func TestRedimirTipoIncorrecto(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, _ := newTokenServiceForTest(repo)

	secreto, err := svc.Emitir("ana@uni.mx", models.TokenVerificacion)
	require.NoError(t, err)

	_, err = svc.Redimir(secreto, models.TokenRecuperacion)
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

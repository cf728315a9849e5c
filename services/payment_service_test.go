package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigca-api/models"
)

type fakePaymentRepo struct {
	usuarios    map[string]*models.User
	trabajos    map[int]*models.Trabajo
	referencias map[int]string
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		usuarios:    map[string]*models.User{},
		trabajos:    map[int]*models.Trabajo{},
		referencias: map[int]string{},
	}
}

func (f *fakePaymentRepo) UsuarioPorID(userID string) (*models.User, error) {
	u, ok := f.usuarios[userID]
	if !ok {
		return nil, ErrUsuarioNoEncontrado
	}
	return u, nil
}

func (f *fakePaymentRepo) TrabajoPorID(trabajoID int) (*models.Trabajo, error) {
	t, ok := f.trabajos[trabajoID]
	if !ok {
		return nil, ErrTrabajoNoEncontrado
	}
	return t, nil
}

func (f *fakePaymentRepo) GuardarReferencia(trabajoID int, referencia string) error {
	f.referencias[trabajoID] = referencia
	return nil
}

type fakePaymentRenderer struct {
	renders []ReferenciaPagoData
}

func (f *fakePaymentRenderer) RenderReferenciaPago(data ReferenciaPagoData) ([]byte, error) {
	f.renders = append(f.renders, data)
	return []byte("%PDF-referencia"), nil
}

var otroAutor = Principal{ID: "AUTB800101BBB", Rol: models.RolAutor}

func (f *fakePaymentRepo) conAutorYTrabajo(p Principal, nombre, apellido string, control *string, trabajoID int, titulo string) {
	f.usuarios[p.ID] = &models.User{
		UserID:          p.ID,
		Nombre:          nombre,
		ApellidoPaterno: apellido,
		NumeroControl:   control,
	}
	f.trabajos[trabajoID] = &models.Trabajo{TrabajoID: trabajoID, Titulo: titulo, UserID: p.ID}
}

func newPaymentServiceForTest(repo PaymentRepo, renderer PaymentRenderer) *PaymentService {
	svc := NewPaymentService(repo, renderer)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestGenerarReferenciaPagoTarifaEstudiante(t *testing.T) {
	repo := newFakePaymentRepo()
	control := "20260145"
	repo.conAutorYTrabajo(autor, "Ana", "Torres", &control, 7, "Cultivos hidropónicos")

	svc := newPaymentServiceForTest(repo, &fakePaymentRenderer{})
	referencia, err := svc.GenerarReferenciaPago(autor, 7)

	require.NoError(t, err)
	assert.Equal(t, TarifaEstudiante, referencia.Monto)
	assert.Equal(t, "SIGCA-2026-000007", referencia.Referencia)
	assert.NotEmpty(t, referencia.PDF)
}

func TestGenerarReferenciaPagoTarifaGeneral(t *testing.T) {
	repo := newFakePaymentRepo()
	repo.conAutorYTrabajo(otroAutor, "Benito", "Lara", nil, 3, "Energías limpias")

	svc := newPaymentServiceForTest(repo, &fakePaymentRenderer{})
	referencia, err := svc.GenerarReferenciaPago(otroAutor, 3)

	require.NoError(t, err)
	assert.Equal(t, TarifaGeneral, referencia.Monto)
}

func TestGenerarReferenciaPagoPersisteEnTrabajo(t *testing.T) {
	repo := newFakePaymentRepo()
	repo.conAutorYTrabajo(otroAutor, "Benito", "Lara", nil, 12, "Bioplásticos")
	renderer := &fakePaymentRenderer{}

	svc := newPaymentServiceForTest(repo, renderer)
	_, err := svc.GenerarReferenciaPago(otroAutor, 12)

	require.NoError(t, err)
	assert.Equal(t, "SIGCA-2026-000012", repo.referencias[12])
	require.Len(t, renderer.renders, 1)
	assert.Equal(t, "Benito Lara", renderer.renders[0].Autor)
	assert.Equal(t, "Bioplásticos", renderer.renders[0].Titulo)
}

func TestGenerarReferenciaPagoTrabajoAjeno(t *testing.T) {
	repo := newFakePaymentRepo()
	control := "20260145"
	repo.conAutorYTrabajo(autor, "Ana", "Torres", &control, 7, "Cultivos hidropónicos")
	repo.usuarios[otroAutor.ID] = &models.User{UserID: otroAutor.ID, Nombre: "Benito", ApellidoPaterno: "Lara"}

	svc := newPaymentServiceForTest(repo, &fakePaymentRenderer{})
	_, err := svc.GenerarReferenciaPago(otroAutor, 7)

	// Another author must not reprice or overwrite the owner's reference.
	assert.ErrorIs(t, err, ErrNoAutorizado)
	assert.Empty(t, repo.referencias)
}

func TestGenerarReferenciaPagoUsuarioInexistente(t *testing.T) {
	svc := newPaymentServiceForTest(newFakePaymentRepo(), &fakePaymentRenderer{})
	_, err := svc.GenerarReferenciaPago(Principal{ID: "NADIE000000XX", Rol: models.RolAutor}, 1)
	assert.ErrorIs(t, err, ErrUsuarioNoEncontrado)
}

func TestGenerarReferenciaPagoTrabajoInexistente(t *testing.T) {
	repo := newFakePaymentRepo()
	repo.usuarios[otroAutor.ID] = &models.User{UserID: otroAutor.ID}

	svc := newPaymentServiceForTest(repo, &fakePaymentRenderer{})
	_, err := svc.GenerarReferenciaPago(otroAutor, 99)
	assert.ErrorIs(t, err, ErrTrabajoNoEncontrado)
}

package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigca-api/models"
)

type fakeWorkRepo struct {
	convocatorias map[int]*models.Convocatoria
	trabajos      map[int]*models.Trabajo
	nextID        int
}

func newFakeWorkRepo() *fakeWorkRepo {
	return &fakeWorkRepo{
		convocatorias: map[int]*models.Convocatoria{},
		trabajos:      map[int]*models.Trabajo{},
	}
}

func (f *fakeWorkRepo) InTransaction(fn func(WorkRepo) error) error {
	return fn(f)
}

func (f *fakeWorkRepo) ConvocatoriaPorID(id int) (*models.Convocatoria, error) {
	c, ok := f.convocatorias[id]
	if !ok {
		return nil, ErrConvocatoriaNoEncontrada
	}
	return c, nil
}

func (f *fakeWorkRepo) ExisteTrabajoDeAutor(userID string, convocatoriaID int) (bool, error) {
	for _, t := range f.trabajos {
		if t.UserID == userID && t.ConvocatoriaID == convocatoriaID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWorkRepo) TrabajoPorID(id int) (*models.Trabajo, error) {
	t, ok := f.trabajos[id]
	if !ok {
		return nil, ErrTrabajoNoEncontrado
	}
	return t, nil
}

func (f *fakeWorkRepo) CrearTrabajo(t *models.Trabajo) error {
	f.nextID++
	t.TrabajoID = f.nextID
	f.trabajos[t.TrabajoID] = t
	return nil
}

func (f *fakeWorkRepo) GuardarTrabajo(t *models.Trabajo) error {
	f.trabajos[t.TrabajoID] = t
	return nil
}

type fakeStorage struct {
	objetos map[string]string
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objetos: map[string]string{}}
}

func (f *fakeStorage) Store(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	if f.err != nil {
		return f.err
	}
	contenido, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objetos[key] = string(contenido)
	return nil
}

func (f *fakeStorage) Fetch(_ context.Context, key string) (io.ReadCloser, int64, error) {
	contenido, ok := f.objetos[key]
	if !ok {
		return nil, 0, errors.New("objeto no encontrado")
	}
	return io.NopCloser(strings.NewReader(contenido)), int64(len(contenido)), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objetos, key)
	return nil
}

var autor = Principal{ID: "AUTA900101AAA", Rol: models.RolAutor}

func archivoDePrueba() ArchivoSubido {
	return ArchivoSubido{
		Nombre:      "manuscrito.pdf",
		ContentType: "application/pdf",
		Tamano:      4,
		Contenido:   strings.NewReader("%PDF"),
	}
}

func convocatoriaAbierta(apertura, cierre time.Time) *models.Convocatoria {
	return &models.Convocatoria{
		ConvocatoriaID: 1,
		Titulo:         "Congreso 2026",
		FechaApertura:  apertura,
		FechaCierre:    cierre,
	}
}

func newWorkServiceForTest(repo WorkRepo, storage *fakeStorage) *WorkService {
	svc := NewWorkService(repo, storage)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCrearTrabajoRegistraEnRevision(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.convocatorias[1] = convocatoriaAbierta(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
	)
	storage := newFakeStorage()

	svc := newWorkServiceForTest(repo, storage)
	trabajo, err := svc.CrearTrabajo(context.Background(), autor, 1, "Riego automatizado", models.TipoDifusion, "", archivoDePrueba())

	require.NoError(t, err)
	assert.Equal(t, models.EstadoEnRevision, trabajo.Estado)
	assert.Equal(t, 1, trabajo.Intento)
	assert.Equal(t, autor.ID, trabajo.UserID)
	assert.True(t, strings.HasPrefix(trabajo.Archivo, "trabajos/"))
	assert.True(t, strings.HasSuffix(trabajo.Archivo, ".pdf"))
	assert.Equal(t, "%PDF", storage.objetos[trabajo.Archivo])
}

func TestCrearTrabajoConvocatoriaCerrada(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.convocatorias[1] = convocatoriaAbierta(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC),
	)
	storage := newFakeStorage()

	svc := newWorkServiceForTest(repo, storage)
	_, err := svc.CrearTrabajo(context.Background(), autor, 1, "Riego automatizado", models.TipoDifusion, "", archivoDePrueba())

	assert.ErrorIs(t, err, ErrConvocatoriaCerrada)
	assert.Empty(t, storage.objetos)
}

func TestCrearTrabajoTipoInvalido(t *testing.T) {
	svc := newWorkServiceForTest(newFakeWorkRepo(), newFakeStorage())
	_, err := svc.CrearTrabajo(context.Background(), autor, 1, "Riego automatizado", "POSTER", "", archivoDePrueba())
	assert.ErrorIs(t, err, ErrTipoTrabajoInvalido)
}

func TestCrearTrabajoDuplicadoEnConvocatoria(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.convocatorias[1] = convocatoriaAbierta(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
	)
	storage := newFakeStorage()

	svc := newWorkServiceForTest(repo, storage)
	_, err := svc.CrearTrabajo(context.Background(), autor, 1, "Primer trabajo", models.TipoDifusion, "", archivoDePrueba())
	require.NoError(t, err)

	_, err = svc.CrearTrabajo(context.Background(), autor, 1, "Segundo trabajo", models.TipoDivulgacion, "", archivoDePrueba())
	assert.ErrorIs(t, err, ErrTrabajoDuplicado)
}

func TestCrearTrabajoConvocatoriaInexistente(t *testing.T) {
	svc := newWorkServiceForTest(newFakeWorkRepo(), newFakeStorage())
	_, err := svc.CrearTrabajo(context.Background(), autor, 9, "Trabajo", models.TipoDifusion, "", archivoDePrueba())
	assert.ErrorIs(t, err, ErrConvocatoriaNoEncontrada)
}

func TestReenviarTrabajoConCambiosSolicitados(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.trabajos[5] = &models.Trabajo{
		TrabajoID: 5,
		UserID:    autor.ID,
		Estado:    models.EstadoCambiosSolicitados,
		Intento:   1,
		Archivo:   "trabajos/original.pdf",
	}
	storage := newFakeStorage()
	storage.objetos["trabajos/original.pdf"] = "%PDF-viejo"

	svc := newWorkServiceForTest(repo, storage)
	trabajo, err := svc.ReenviarTrabajo(context.Background(), autor, 5, archivoDePrueba())

	require.NoError(t, err)
	assert.Equal(t, models.EstadoEnRevision, trabajo.Estado)
	assert.Equal(t, 2, trabajo.Intento)
	assert.NotEqual(t, "trabajos/original.pdf", trabajo.Archivo)
	assert.Contains(t, storage.objetos, trabajo.Archivo)
	assert.NotContains(t, storage.objetos, "trabajos/original.pdf")
}

func TestReenviarTrabajoEnRevision(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.trabajos[5] = &models.Trabajo{
		TrabajoID: 5,
		UserID:    autor.ID,
		Estado:    models.EstadoEnRevision,
		Intento:   1,
	}

	svc := newWorkServiceForTest(repo, newFakeStorage())
	_, err := svc.ReenviarTrabajo(context.Background(), autor, 5, archivoDePrueba())
	assert.ErrorIs(t, err, ErrTrabajoNoModificable)
}

func TestReenviarTrabajoAjeno(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.trabajos[5] = &models.Trabajo{
		TrabajoID: 5,
		UserID:    "OTRO850101BBB",
		Estado:    models.EstadoCambiosSolicitados,
	}

	svc := newWorkServiceForTest(repo, newFakeStorage())
	_, err := svc.ReenviarTrabajo(context.Background(), autor, 5, archivoDePrueba())
	assert.ErrorIs(t, err, ErrNoAutorizado)
}

func TestReenviarTrabajoFalloDeAlmacenamiento(t *testing.T) {
	repo := newFakeWorkRepo()
	repo.trabajos[5] = &models.Trabajo{
		TrabajoID: 5,
		UserID:    autor.ID,
		Estado:    models.EstadoCambiosSolicitados,
		Intento:   1,
		Archivo:   "trabajos/original.pdf",
	}
	storage := newFakeStorage()
	storage.objetos["trabajos/original.pdf"] = "%PDF-viejo"
	storage.err = errors.New("bucket no disponible")

	svc := newWorkServiceForTest(repo, storage)
	_, err := svc.ReenviarTrabajo(context.Background(), autor, 5, archivoDePrueba())

	require.Error(t, err)
	assert.Equal(t, 1, repo.trabajos[5].Intento)
	assert.Equal(t, "trabajos/original.pdf", repo.trabajos[5].Archivo)
	assert.Contains(t, storage.objetos, "trabajos/original.pdf")
}

package services

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigca-api/models"
)

type fakeAssignmentRepo struct {
	trabajos     map[int]*models.Trabajo
	usuarios     map[string]*models.User
	asignaciones map[string]*models.Asignacion
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		trabajos:     map[int]*models.Trabajo{},
		usuarios:     map[string]*models.User{},
		asignaciones: map[string]*models.Asignacion{},
	}
}

func (f *fakeAssignmentRepo) InTransaction(fn func(AssignmentRepo) error) error {
	// The fake applies writes immediately; tests assert that the service
	// performs every check before the first insert.
	return fn(f)
}

func (f *fakeAssignmentRepo) TrabajoPorID(id int) (*models.Trabajo, error) {
	t, ok := f.trabajos[id]
	if !ok {
		return nil, ErrTrabajoNoEncontrado
	}
	return t, nil
}

func (f *fakeAssignmentRepo) RevisorPorID(id string) (*models.User, error) {
	u, ok := f.usuarios[id]
	if !ok {
		return nil, ErrRevisorNoEncontrado
	}
	return u, nil
}

func (f *fakeAssignmentRepo) AsignacionesActivasDeRevisor(revisorID string) (int64, error) {
	var count int64
	for _, a := range f.asignaciones {
		if a.RevisorID == revisorID && a.Activa {
			count++
		}
	}
	return count, nil
}

func (f *fakeAssignmentRepo) ExisteActivaParaTrabajo(trabajoID int, revisorID string) (bool, error) {
	for _, a := range f.asignaciones {
		if a.TrabajoID == trabajoID && a.RevisorID == revisorID && a.Activa {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignmentRepo) SiguienteSecuencia(prefijo string) (int64, error) {
	var max int64
	for id := range f.asignaciones {
		if !strings.HasPrefix(id, prefijo) {
			continue
		}
		n, err := strconv.ParseInt(id[len(prefijo):], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

func (f *fakeAssignmentRepo) Crear(a *models.Asignacion) error {
	copia := *a
	f.asignaciones[a.AsignacionID] = &copia
	return nil
}

func (f *fakeAssignmentRepo) Eliminar(id string) (int64, error) {
	if _, ok := f.asignaciones[id]; !ok {
		return 0, nil
	}
	delete(f.asignaciones, id)
	return 1, nil
}

func (f *fakeAssignmentRepo) TrabajosSinAsignar() ([]models.Trabajo, error) {
	var out []models.Trabajo
	for _, t := range f.trabajos {
		if t.Estado != models.EstadoEnRevision {
			continue
		}
		activas := false
		for _, a := range f.asignaciones {
			if a.TrabajoID == t.TrabajoID && a.Activa {
				activas = true
				break
			}
		}
		if !activas {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) RevisoresConCarga() ([]RevisorCarga, error) {
	var out []RevisorCarga
	for _, u := range f.usuarios {
		if u.Rol != models.RolRevisor {
			continue
		}
		activas, _ := f.AsignacionesActivasDeRevisor(u.UserID)
		out = append(out, RevisorCarga{User: *u, AsignacionesActivas: activas})
	}
	return out, nil
}

func (f *fakeAssignmentRepo) agregarRevisor(id string) {
	f.usuarios[id] = &models.User{UserID: id, Rol: models.RolRevisor, Activo: true}
}

func (f *fakeAssignmentRepo) agregarActivas(revisorID string, trabajoIDs ...int) {
	for _, tid := range trabajoIDs {
		id := fmt.Sprintf("%s-%d", revisorID, len(f.asignaciones))
		f.asignaciones[id] = &models.Asignacion{
			AsignacionID: id,
			TrabajoID:    tid,
			RevisorID:    revisorID,
			Activa:       true,
		}
	}
}

func newAssignmentServiceForTest(repo AssignmentRepo) *AssignmentService {
	svc := NewAssignmentService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

var comite = Principal{ID: "COM0001019XX", Rol: models.RolComite}

func TestCrearAsignacionesRechazaListaVacia(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	_, err := svc.CrearAsignaciones(comite, 1, nil)
	assert.ErrorIs(t, err, ErrListaRevisoresVacia)
}

func TestCrearAsignacionesRechazaRevisorRepetido(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	_, err := svc.CrearAsignaciones(comite, 1, []string{"REV1", "REV2", "REV1"})
	assert.ErrorIs(t, err, ErrRevisorDuplicado)
	assert.Empty(t, repo.asignaciones)
}

func TestCrearAsignacionesRechazaRolInsuficiente(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	_, err := svc.CrearAsignaciones(Principal{ID: "REV1", Rol: models.RolRevisor}, 1, []string{"REV2"})
	assert.ErrorIs(t, err, ErrNoAutorizado)
}

func TestCrearAsignacionesFallaTodoElLoteConRevisorSaturado(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.trabajos[1] = &models.Trabajo{TrabajoID: 1, Estado: models.EstadoEnRevision}
	for i := 1; i <= 5; i++ {
		repo.agregarRevisor(revID(i))
	}
	// r1 already sits at the cap
	repo.agregarActivas(revID(1), 101, 102, 103, 104)
	antes := len(repo.asignaciones)

	svc := newAssignmentServiceForTest(repo)
	_, err := svc.CrearAsignaciones(comite, 1, []string{revID(1), revID(2), revID(3), revID(4), revID(5)})

	assert.ErrorIs(t, err, ErrRevisorSaturado)
	assert.Len(t, repo.asignaciones, antes, "no assignment may be inserted when the batch fails")
}

func TestCrearAsignacionesRechazaRevisorYaAsignado(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.trabajos[1] = &models.Trabajo{TrabajoID: 1, Estado: models.EstadoEnRevision}
	repo.agregarRevisor(revID(1))
	repo.agregarActivas(revID(1), 1)

	svc := newAssignmentServiceForTest(repo)
	_, err := svc.CrearAsignaciones(comite, 1, []string{revID(1)})

	assert.ErrorIs(t, err, ErrRevisorYaAsignado)
}

func TestCrearAsignacionesGeneraFoliosConPrefijoDeAnio(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.trabajos[1] = &models.Trabajo{TrabajoID: 1, Estado: models.EstadoEnRevision}
	repo.agregarRevisor(revID(1))
	repo.agregarRevisor(revID(2))

	svc := newAssignmentServiceForTest(repo)
	creadas, err := svc.CrearAsignaciones(comite, 1, []string{revID(1), revID(2)})

	require.NoError(t, err)
	require.Len(t, creadas, 2)
	assert.Equal(t, "2026-0001", creadas[0].AsignacionID)
	assert.Equal(t, "2026-0002", creadas[1].AsignacionID)
	for _, a := range creadas {
		assert.True(t, a.Activa)
		assert.Nil(t, a.Calificacion)
	}
}

func TestCrearAsignacionesNoReutilizaFoliosTrasEliminar(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.trabajos[1] = &models.Trabajo{TrabajoID: 1, Estado: models.EstadoEnRevision}
	repo.trabajos[2] = &models.Trabajo{TrabajoID: 2, Estado: models.EstadoEnRevision}
	repo.agregarRevisor(revID(1))
	repo.agregarRevisor(revID(2))
	repo.agregarRevisor(revID(3))

	svc := newAssignmentServiceForTest(repo)
	_, err := svc.CrearAsignaciones(comite, 1, []string{revID(1), revID(2)})
	require.NoError(t, err)
	require.NoError(t, svc.EliminarAsignacion(comite, "2026-0001"))

	// The freed suffix must not be reissued: "2026-0002" still exists.
	nuevas, err := svc.CrearAsignaciones(comite, 2, []string{revID(3)})
	require.NoError(t, err)
	require.Len(t, nuevas, 1)
	assert.Equal(t, "2026-0003", nuevas[0].AsignacionID)
	assert.Contains(t, repo.asignaciones, "2026-0002")
}

func TestEliminarAsignacionNoEncontrada(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newAssignmentServiceForTest(repo)

	err := svc.EliminarAsignacion(comite, "2026-9999")
	assert.ErrorIs(t, err, ErrAsignacionNoEncontrada)
}

func TestEliminarAsignacionDescartaCalificacion(t *testing.T) {
	repo := newFakeAssignmentRepo()
	score := 88.0
	repo.asignaciones["2026-0001"] = &models.Asignacion{
		AsignacionID: "2026-0001",
		TrabajoID:    1,
		RevisorID:    revID(1),
		Calificacion: &score,
	}

	svc := newAssignmentServiceForTest(repo)
	require.NoError(t, svc.EliminarAsignacion(comite, "2026-0001"))
	assert.Empty(t, repo.asignaciones)
}

func TestRevisoresDisponiblesMarcaSaturados(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.agregarRevisor(revID(1))
	repo.agregarRevisor(revID(2))
	repo.agregarActivas(revID(1), 101, 102, 103, 104)
	repo.agregarActivas(revID(2), 101)

	svc := newAssignmentServiceForTest(repo)
	revisores, err := svc.RevisoresDisponibles(comite)
	require.NoError(t, err)
	require.Len(t, revisores, 2)

	porID := map[string]RevisorCarga{}
	for _, r := range revisores {
		porID[r.UserID] = r
	}

	assert.False(t, porID[revID(1)].Disponible)
	assert.Equal(t, RevisorIndispuesto, porID[revID(1)].Estado)
	assert.True(t, porID[revID(2)].Disponible)
	assert.Equal(t, RevisorDisponible, porID[revID(2)].Estado)
}

func revID(i int) string {
	return []string{"", "REVA850101AAA", "REVB860202BBB", "REVC870303CCC", "REVD880404DDD", "REVE890505EEE"}[i]
}

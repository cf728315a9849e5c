package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"sigca-api/services"
)

// currentPrincipal builds the explicit caller identity handed to every core
// service operation.
func currentPrincipal(c *gin.Context) services.Principal {
	return services.Principal{
		ID:  c.GetString("userID"),
		Rol: c.GetString("rol"),
	}
}

// respondServiceError translates service sentinel errors into the HTTP
// error classes of the API: 400 for validation and precondition failures,
// 403 for authorization, 404 for missing resources.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrNoAutorizado),
		errors.Is(err, services.ErrAsignacionAjena):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrTrabajoNoEncontrado),
		errors.Is(err, services.ErrAsignacionNoEncontrada),
		errors.Is(err, services.ErrConvocatoriaNoEncontrada),
		errors.Is(err, services.ErrUsuarioNoEncontrado),
		errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrListaRevisoresVacia),
		errors.Is(err, services.ErrRevisorDuplicado),
		errors.Is(err, services.ErrRevisorNoEncontrado),
		errors.Is(err, services.ErrRevisorYaAsignado),
		errors.Is(err, services.ErrRevisorSaturado),
		errors.Is(err, services.ErrAsignacionInactiva),
		errors.Is(err, services.ErrVeredictoInvalido),
		errors.Is(err, services.ErrComentarioRequerido),
		errors.Is(err, services.ErrCriteriosIncompletos),
		errors.Is(err, services.ErrValorLikertInvalido),
		errors.Is(err, services.ErrSinCriteriosActivos),
		errors.Is(err, services.ErrTrabajoYaDictaminado),
		errors.Is(err, services.ErrTrabajoNoDictaminable),
		errors.Is(err, services.ErrScreeningFaltante),
		errors.Is(err, services.ErrSinAsignaciones),
		errors.Is(err, services.ErrAsignacionesSinCalificar),
		errors.Is(err, services.ErrNivelScreeningInvalido),
		errors.Is(err, services.ErrConvocatoriaCerrada),
		errors.Is(err, services.ErrTrabajoDuplicado),
		errors.Is(err, services.ErrTipoTrabajoInvalido),
		errors.Is(err, services.ErrTrabajoNoModificable),
		errors.Is(err, services.ErrTokenInvalido),
		errors.Is(err, services.ErrTokenExpirado):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/models"
	"sigca-api/services"
)

func assignmentService() *services.AssignmentService {
	return services.NewAssignmentService(services.NewGormAssignmentRepo(config.DB))
}

type createAsignacionesRequest struct {
	TrabajoID  int      `json:"trabajo_id" binding:"required"`
	RevisorIDs []string `json:"revisor_ids" binding:"required"`
}

// CreateAsignaciones links a batch of reviewers to a work. The batch is
// all-or-nothing.
func CreateAsignaciones(c *gin.Context) {
	var req createAsignacionesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asignaciones, err := assignmentService().CrearAsignaciones(currentPrincipal(c), req.TrabajoID, req.RevisorIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Asignaciones creadas correctamente",
		"asignaciones": asignaciones,
	})
}

// DeleteAsignacion hard-deletes an assignment.
func DeleteAsignacion(c *gin.Context) {
	if err := assignmentService().EliminarAsignacion(currentPrincipal(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asignación eliminada correctamente"})
}

// GetTrabajosSinAsignar lists works in review with no active assignment.
func GetTrabajosSinAsignar(c *gin.Context) {
	trabajos, err := assignmentService().TrabajosSinAsignar(currentPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trabajos": trabajos,
		"total":    len(trabajos),
	})
}

// GetRevisoresDisponibles lists reviewers annotated with their load.
func GetRevisoresDisponibles(c *gin.Context) {
	revisores, err := assignmentService().RevisoresDisponibles(currentPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"revisores": revisores,
		"total":     len(revisores),
	})
}

// GetMisAsignaciones lists the calling reviewer's assignments; ?activas=true
// keeps only pending ones.
func GetMisAsignaciones(c *gin.Context) {
	p := currentPrincipal(c)

	var asignaciones []models.Asignacion
	query := config.DB.Preload("Trabajo").Preload("Trabajo.Convocatoria").
		Where("revisor_id = ?", p.ID)

	if c.Query("activas") == "true" {
		query = query.Where("activa = ?", true)
	}

	if err := query.Order("create_at DESC").Find(&asignaciones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch asignaciones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asignaciones": asignaciones,
		"total":        len(asignaciones),
	})
}

// GetAsignacionesDeTrabajo lists all assignments of a work for the
// committee view.
func GetAsignacionesDeTrabajo(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	var asignaciones []models.Asignacion
	if err := config.DB.Preload("Revisor").
		Where("trabajo_id = ?", trabajoID).
		Order("create_at ASC").
		Find(&asignaciones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch asignaciones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asignaciones": asignaciones,
		"total":        len(asignaciones),
	})
}

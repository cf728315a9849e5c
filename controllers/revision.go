package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/models"
	"sigca-api/services"
)

func reviewService() *services.ReviewService {
	return services.NewReviewService(services.NewGormReviewRepo(config.DB))
}

type submitEvaluacionRequest struct {
	AsignacionID string `json:"asignacion_id" binding:"required"`
	Veredicto    string `json:"veredicto" binding:"required"`
	Comentario   string `json:"comentario"`
}

// SubmitEvaluacion records a reviewer verdict over an assigned work.
func SubmitEvaluacion(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	var req submitEvaluacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trabajo, err := reviewService().RegistrarEvaluacion(
		currentPrincipal(c), trabajoID, req.AsignacionID, req.Veredicto, req.Comentario)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Evaluación registrada correctamente",
		"trabajo": trabajo,
	})
}

type calificarRubricaRequest struct {
	AsignacionID string      `json:"asignacion_id" binding:"required"`
	Valores      map[int]int `json:"valores" binding:"required"`
	Comentario   string      `json:"comentario" binding:"required"`
}

// CalificarRubrica scores a work against the active rubric of its type.
func CalificarRubrica(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	var req calificarRubricaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resultado, err := reviewService().CalificarRubrica(
		currentPrincipal(c), trabajoID, req.AsignacionID, req.Valores, req.Comentario)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Rúbrica registrada correctamente",
		"resultado": resultado,
	})
}

// GetCriteriosParaTrabajo returns the active rubric rows the reviewer must
// rate for the work's type.
func GetCriteriosParaTrabajo(c *gin.Context) {
	trabajoID := c.Param("id")

	var trabajo models.Trabajo
	if err := config.DB.Where("trabajo_id = ? AND delete_at IS NULL", trabajoID).
		First(&trabajo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trabajo no encontrado"})
		return
	}

	var criterios []models.CriterioEvaluacion
	if err := config.DB.Where("grupo = ? AND activo = ?", trabajo.Tipo, true).
		Order("criterio_id ASC").
		Find(&criterios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch criterios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"criterios": criterios,
		"total":     len(criterios),
	})
}

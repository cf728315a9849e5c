package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/models"
)

type criterioRequest struct {
	Nombre       string `json:"nombre" binding:"required"`
	Descripcion  string `json:"descripcion"`
	Grupo        string `json:"grupo" binding:"required"`
	Descripcion1 string `json:"descripcion_1"`
	Descripcion2 string `json:"descripcion_2"`
	Descripcion3 string `json:"descripcion_3"`
	Descripcion4 string `json:"descripcion_4"`
	Descripcion5 string `json:"descripcion_5"`
}

// GetCriterios lists rubric rows; ?grupo= filters by work type and
// ?activos=true keeps only active rows.
func GetCriterios(c *gin.Context) {
	var criterios []models.CriterioEvaluacion
	query := config.DB.Order("criterio_id ASC")

	if grupo := c.Query("grupo"); grupo != "" {
		query = query.Where("grupo = ?", grupo)
	}
	if c.Query("activos") == "true" {
		query = query.Where("activo = ?", true)
	}

	if err := query.Find(&criterios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch criterios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"criterios": criterios,
		"total":     len(criterios),
	})
}

// CreateCriterio adds a rubric row.
func CreateCriterio(c *gin.Context) {
	var req criterioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Grupo != models.TipoDifusion && req.Grupo != models.TipoDivulgacion {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El grupo debe ser DIFUSION o DIVULGACION"})
		return
	}

	now := time.Now()
	criterio := models.CriterioEvaluacion{
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		Grupo:        req.Grupo,
		Descripcion1: req.Descripcion1,
		Descripcion2: req.Descripcion2,
		Descripcion3: req.Descripcion3,
		Descripcion4: req.Descripcion4,
		Descripcion5: req.Descripcion5,
		Activo:       true,
		CreateAt:     &now,
		UpdateAt:     &now,
	}

	if err := config.DB.Create(&criterio).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create criterio"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Criterio creado correctamente",
		"criterio": criterio,
	})
}

// DeactivateCriterio retires a rubric row. Deactivated criteria stop
// appearing to reviewers but stay referenced by past evaluations.
func DeactivateCriterio(c *gin.Context) {
	id := c.Param("id")

	var criterio models.CriterioEvaluacion
	if err := config.DB.Where("criterio_id = ?", id).First(&criterio).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Criterio no encontrado"})
		return
	}

	now := time.Now()
	criterio.Activo = false
	criterio.UpdateAt = &now

	if err := config.DB.Save(&criterio).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update criterio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Criterio desactivado correctamente"})
}

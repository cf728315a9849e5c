package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/models"
)

type convocatoriaRequest struct {
	Titulo        string    `json:"titulo" binding:"required"`
	Descripcion   string    `json:"descripcion"`
	FechaApertura time.Time `json:"fecha_apertura" binding:"required"`
	FechaCierre   time.Time `json:"fecha_cierre" binding:"required"`
	Temas         string    `json:"temas"`
}

// GetConvocatorias lists calls; ?abiertas=true keeps only currently open
// windows.
func GetConvocatorias(c *gin.Context) {
	var convocatorias []models.Convocatoria
	query := config.DB.Where("delete_at IS NULL")

	if c.Query("abiertas") == "true" {
		now := time.Now()
		query = query.Where("fecha_apertura <= ? AND fecha_cierre >= ?", now, now)
	}

	if err := query.Order("fecha_apertura DESC").Find(&convocatorias).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch convocatorias"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"convocatorias": convocatorias,
		"total":         len(convocatorias),
	})
}

// GetConvocatoria returns a single call by id.
func GetConvocatoria(c *gin.Context) {
	id := c.Param("id")

	var convocatoria models.Convocatoria
	if err := config.DB.Where("convocatoria_id = ? AND delete_at IS NULL", id).
		First(&convocatoria).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Convocatoria no encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"convocatoria": convocatoria})
}

// CreateConvocatoria opens a new submission window.
func CreateConvocatoria(c *gin.Context) {
	var req convocatoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.FechaCierre.After(req.FechaApertura) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de cierre debe ser posterior a la de apertura"})
		return
	}

	now := time.Now()
	convocatoria := models.Convocatoria{
		Titulo:        req.Titulo,
		Descripcion:   req.Descripcion,
		FechaApertura: req.FechaApertura,
		FechaCierre:   req.FechaCierre,
		Temas:         req.Temas,
		CreateAt:      &now,
		UpdateAt:      &now,
	}

	if err := config.DB.Create(&convocatoria).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create convocatoria"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Convocatoria creada correctamente",
		"convocatoria": convocatoria,
	})
}

// UpdateConvocatoria edits the window metadata.
func UpdateConvocatoria(c *gin.Context) {
	id := c.Param("id")

	var convocatoria models.Convocatoria
	if err := config.DB.Where("convocatoria_id = ? AND delete_at IS NULL", id).
		First(&convocatoria).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Convocatoria no encontrada"})
		return
	}

	var req convocatoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.FechaCierre.After(req.FechaApertura) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de cierre debe ser posterior a la de apertura"})
		return
	}

	now := time.Now()
	convocatoria.Titulo = req.Titulo
	convocatoria.Descripcion = req.Descripcion
	convocatoria.FechaApertura = req.FechaApertura
	convocatoria.FechaCierre = req.FechaCierre
	convocatoria.Temas = req.Temas
	convocatoria.UpdateAt = &now

	if err := config.DB.Save(&convocatoria).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update convocatoria"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Convocatoria actualizada correctamente",
		"convocatoria": convocatoria,
	})
}

// DeleteConvocatoria soft-deletes a call.
func DeleteConvocatoria(c *gin.Context) {
	id := c.Param("id")

	var convocatoria models.Convocatoria
	if err := config.DB.Where("convocatoria_id = ? AND delete_at IS NULL", id).
		First(&convocatoria).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Convocatoria no encontrada"})
		return
	}

	now := time.Now()
	convocatoria.DeleteAt = &now

	if err := config.DB.Save(&convocatoria).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete convocatoria"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Convocatoria eliminada correctamente"})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/services"
)

func decisionService() *services.DecisionService {
	return services.NewDecisionService(
		services.NewGormDecisionRepo(config.DB),
		services.NewPDFRenderer(),
		services.NewSMTPMailer(),
	)
}

type screeningRequest struct {
	NvlIA     *float64 `json:"nvl_ia" binding:"required"`
	NvlPlagio *float64 `json:"nvl_plagio" binding:"required"`
}

// RegistrarScreening stores AI and plagiarism levels for a work.
func RegistrarScreening(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	var req screeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trabajo, err := decisionService().RegistrarScreening(currentPrincipal(c), trabajoID, *req.NvlIA, *req.NvlPlagio)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Niveles de screening registrados",
		"trabajo": trabajo,
	})
}

type aceptarRequest struct {
	Presencial *bool `json:"presencial" binding:"required"`
}

// AceptarTrabajo issues the committee acceptance dictamen.
func AceptarTrabajo(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	var req aceptarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resultado, err := decisionService().AceptarTrabajo(currentPrincipal(c), trabajoID, *req.Presencial)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Trabajo aceptado",
		"resultado": resultado,
	})
}

// RechazarTrabajo issues the committee rejection dictamen.
func RechazarTrabajo(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	resultado, err := decisionService().RechazarTrabajo(currentPrincipal(c), trabajoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Trabajo rechazado",
		"resultado": resultado,
	})
}

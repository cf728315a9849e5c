package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/services"
)

func paymentService() *services.PaymentService {
	return services.NewPaymentService(services.NewGormPaymentRepo(config.DB), services.NewPDFRenderer())
}

// GenerarReferenciaPago renders and returns the payment reference sheet for
// the caller's work.
func GenerarReferenciaPago(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	referencia, err := paymentService().GenerarReferenciaPago(currentPrincipal(c), trabajoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="referencia_%s.pdf"`, referencia.Referencia))
	c.Data(http.StatusOK, "application/pdf", referencia.PDF)
}

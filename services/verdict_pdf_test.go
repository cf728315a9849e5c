package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAceptacionProducePDF(t *testing.T) {
	renderer := NewPDFRenderer()
	calificacion := 85.0

	pdf, err := renderer.RenderAceptacion(VeredictoData{
		Autor:        "Ana Torres",
		Titulo:       "Redes neuronales en apicultura",
		Coautores:    "Sin coautores",
		Modalidad:    "Presencial",
		Calificacion: &calificacion,
		Fecha:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Comentarios:  []string{"Buen trabajo", "Revisar la sección de métodos"},
	})

	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderRechazoSinCalificacion(t *testing.T) {
	renderer := NewPDFRenderer()

	pdf, err := renderer.RenderRechazo(VeredictoData{
		Autor:     "Ana Torres",
		Titulo:    "Redes neuronales en apicultura",
		Coautores: "Sin coautores",
		Motivo:    MotivoRechazoPlagio,
		Fecha:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderReferenciaPagoProducePDF(t *testing.T) {
	renderer := NewPDFRenderer()

	pdf, err := renderer.RenderReferenciaPago(ReferenciaPagoData{
		Autor:      "Ana Torres",
		Titulo:     "Redes neuronales en apicultura",
		Referencia: "SIGCA-2026-000007",
		Monto:      1500.00,
		Fecha:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

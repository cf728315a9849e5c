package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/models"
	"sigca-api/services"
)

func workService() *services.WorkService {
	return services.NewWorkService(services.NewGormWorkRepo(config.DB), config.Storage)
}

// CreateTrabajo registers a submission against an open call. Multipart
// form: convocatoria_id, titulo, tipo, coautores, archivo (file).
func CreateTrabajo(c *gin.Context) {
	convocatoriaID, err := strconv.Atoi(c.PostForm("convocatoria_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "convocatoria_id inválido"})
		return
	}

	titulo := c.PostForm("titulo")
	if titulo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El título es obligatorio"})
		return
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe adjuntar el archivo del trabajo"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No fue posible leer el archivo"})
		return
	}
	defer file.Close()

	trabajo, err := workService().CrearTrabajo(
		c.Request.Context(),
		currentPrincipal(c),
		convocatoriaID,
		titulo,
		c.PostForm("tipo"),
		c.PostForm("coautores"),
		services.ArchivoSubido{
			Nombre:      fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Tamano:      fileHeader.Size,
			Contenido:   file,
		},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trabajo registrado correctamente",
		"trabajo": trabajo,
	})
}

// ResubmitTrabajo uploads a corrected manuscript for a work with requested
// changes.
func ResubmitTrabajo(c *gin.Context) {
	trabajoID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de trabajo inválido"})
		return
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Debe adjuntar el archivo corregido"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No fue posible leer el archivo"})
		return
	}
	defer file.Close()

	trabajo, err := workService().ReenviarTrabajo(
		c.Request.Context(),
		currentPrincipal(c),
		trabajoID,
		services.ArchivoSubido{
			Nombre:      fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Tamano:      fileHeader.Size,
			Contenido:   file,
		},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trabajo reenviado correctamente",
		"trabajo": trabajo,
	})
}

// GetTrabajos lists works. Authors see their own; committee and admin see
// everything, filterable by estado and convocatoria.
func GetTrabajos(c *gin.Context) {
	p := currentPrincipal(c)

	var trabajos []models.Trabajo
	query := config.DB.Preload("Autor").Preload("Convocatoria").
		Where("trabajos.delete_at IS NULL")

	if !p.PuedeDictaminar() {
		query = query.Where("user_id = ?", p.ID)
	}

	if estado := c.Query("estado"); estado != "" {
		query = query.Where("estado = ?", estado)
	}
	if convocatoria := c.Query("convocatoria"); convocatoria != "" {
		query = query.Where("convocatoria_id = ?", convocatoria)
	}

	if err := query.Find(&trabajos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trabajos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trabajos": trabajos,
		"total":    len(trabajos),
	})
}

// revisorAsignado reports whether the reviewer holds an assignment (active
// or not) for the work. Variable so tests can substitute it.
var revisorAsignado = func(trabajoID int, revisorID string) bool {
	var count int64
	config.DB.Model(&models.Asignacion{}).
		Where("trabajo_id = ? AND revisor_id = ?", trabajoID, revisorID).
		Count(&count)
	return count > 0
}

// puedeVerTrabajo is the visibility rule shared by the work detail and the
// manuscript download: committee and admin see everything, reviewers only
// works assigned to them, authors only their own.
func puedeVerTrabajo(p services.Principal, trabajo *models.Trabajo) bool {
	switch {
	case p.PuedeDictaminar():
		return true
	case p.Rol == models.RolRevisor:
		return revisorAsignado(trabajo.TrabajoID, p.ID)
	default:
		return trabajo.UserID == p.ID
	}
}

// GetTrabajo returns a single work. Reviewers reach it only through an
// assignment; authors only their own.
func GetTrabajo(c *gin.Context) {
	id := c.Param("id")
	p := currentPrincipal(c)

	var trabajo models.Trabajo
	query := config.DB.Preload("Autor").Preload("Convocatoria").
		Where("trabajo_id = ? AND trabajos.delete_at IS NULL", id)

	trabajoID, _ := strconv.Atoi(id)
	switch {
	case p.PuedeDictaminar():
	case p.Rol == models.RolRevisor:
		if !revisorAsignado(trabajoID, p.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "El trabajo no le ha sido asignado"})
			return
		}
	default:
		query = query.Where("user_id = ?", p.ID)
	}

	if err := query.First(&trabajo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trabajo no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trabajo": trabajo})
}

// DownloadArchivo streams the manuscript from blob storage, under the same
// visibility rule as the work detail.
func DownloadArchivo(c *gin.Context) {
	id := c.Param("id")

	var trabajo models.Trabajo
	if err := config.DB.Where("trabajo_id = ? AND delete_at IS NULL", id).
		First(&trabajo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trabajo no encontrado"})
		return
	}

	if !puedeVerTrabajo(currentPrincipal(c), &trabajo) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	reader, size, err := config.Storage.Fetch(c.Request.Context(), trabajo.Archivo)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Archivo no disponible"})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="trabajo.pdf"`)
	c.DataFromReader(http.StatusOK, size, "application/octet-stream", reader, nil)
}

// GetComentarios lists the anonymous feedback of a work. Visible to the
// author and to committee/admin.
func GetComentarios(c *gin.Context) {
	id := c.Param("id")
	p := currentPrincipal(c)

	var trabajo models.Trabajo
	if err := config.DB.Where("trabajo_id = ? AND delete_at IS NULL", id).
		First(&trabajo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trabajo no encontrado"})
		return
	}

	if !p.PuedeDictaminar() && trabajo.UserID != p.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var comentarios []models.Comentario
	if err := config.DB.Where("trabajo_id = ?", id).
		Order("create_at ASC").
		Find(&comentarios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comentarios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comentarios": comentarios,
		"total":       len(comentarios),
	})
}

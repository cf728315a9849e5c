package controllers

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sigca-api/config"
	"sigca-api/models"
	"sigca-api/services"
	"sigca-api/utils"
)

// sendMailFunc is swappable for tests.
var sendMailFunc = config.SendMail

func tokenService() *services.TokenService {
	return services.NewTokenService(services.NewGormTokenRepo(config.DB))
}

func frontendURL() string {
	base := os.Getenv("FRONTEND_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	return strings.TrimRight(base, "/")
}

type registerRequest struct {
	UserID          string  `json:"user_id" binding:"required"`
	Nombre          string  `json:"nombre" binding:"required"`
	ApellidoPaterno string  `json:"apellido_paterno" binding:"required"`
	ApellidoMaterno string  `json:"apellido_materno"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required"`
	NumeroControl   *string `json:"numero_control"`
}

// Register creates an inactive author account and mails the verification
// token.
func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	req.UserID = strings.ToUpper(utils.SanitizeInput(req.UserID))
	req.Email = utils.SanitizeInput(req.Email)

	if !utils.ValidateRFC(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "El RFC o CURP no tiene un formato válido"})
		return
	}
	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	var existing models.User
	if err := config.DB.Where("user_id = ? OR email = ?", req.UserID, req.Email).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "El usuario o correo ya está registrado"})
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible registrar al usuario"})
		return
	}

	now := time.Now()
	user := models.User{
		UserID:          req.UserID,
		Nombre:          req.Nombre,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: req.ApellidoMaterno,
		Email:           req.Email,
		Password:        hashed,
		Rol:             models.RolAutor,
		Activo:          false,
		NumeroControl:   req.NumeroControl,
		CreateAt:        &now,
		UpdateAt:        &now,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible registrar al usuario"})
		return
	}

	emailSent := true
	secreto, err := tokenService().Emitir(user.Email, models.TokenVerificacion)
	if err == nil {
		link := fmt.Sprintf("%s/verificar?token=%s", frontendURL(), url.QueryEscape(secreto))
		err = sendMailFunc([]string{user.Email}, "Verifica tu cuenta - SIGCA",
			fmt.Sprintf(`<p>Bienvenido(a) %s:</p>
				<p>Para activar tu cuenta haz clic en el siguiente enlace (vigencia de 15 minutos):</p>
				<p><a href="%s">%s</a></p>`, user.Nombre, link, link))
	}
	if err != nil {
		log.Printf("Warning: no se pudo enviar el correo de verificación a %s: %v", user.Email, err)
		emailSent = false
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Usuario registrado. Revisa tu correo para verificar la cuenta.",
		"email_sent": emailSent,
	})
}

// VerifyEmail redeems a verification token and activates the account.
func VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	email, err := tokenService().Redimir(req.Token, models.TokenVerificacion)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := config.DB.Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{"activo": true, "update_at": time.Now()}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible activar la cuenta"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cuenta verificada correctamente"})
}

// ForgotPassword issues a password reset token. The response never reveals
// whether the email exists.
func ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	req.Email = utils.SanitizeInput(req.Email)

	var user models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", req.Email).
		First(&user).Error; err == nil {
		if secreto, err := tokenService().Emitir(user.Email, models.TokenRecuperacion); err == nil {
			link := fmt.Sprintf("%s/restablecer?token=%s", frontendURL(), url.QueryEscape(secreto))
			if err := sendMailFunc([]string{user.Email}, "Restablece tu contraseña - SIGCA",
				fmt.Sprintf(`<p>Para restablecer tu contraseña haz clic en el siguiente enlace (vigencia de 15 minutos):</p>
					<p><a href="%s">%s</a></p>`, link, link)); err != nil {
				log.Printf("Warning: no se pudo enviar el correo de recuperación a %s: %v", user.Email, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Si el correo está registrado recibirás las instrucciones de recuperación",
	})
}

// ResetPassword redeems a reset token and stores the new password hash.
func ResetPassword(c *gin.Context) {
	var req struct {
		Token           string `json:"token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Las contraseñas no coinciden"})
		return
	}
	if ok, msg := utils.ValidatePassword(req.NewPassword); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	email, err := tokenService().Redimir(req.Token, models.TokenRecuperacion)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hashed, err := HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible actualizar la contraseña"})
		return
	}

	if err := config.DB.Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{"password": hashed, "update_at": time.Now()}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible actualizar la contraseña"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contraseña actualizada correctamente"})
}

// InviteReviewer mails a reviewer invitation token.
func InviteReviewer(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	req.Email = utils.SanitizeInput(req.Email)

	secreto, err := tokenService().Emitir(req.Email, models.TokenInvitacionRevisor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible generar la invitación"})
		return
	}

	link := fmt.Sprintf("%s/registro-revisor?token=%s", frontendURL(), url.QueryEscape(secreto))
	if err := sendMailFunc([]string{req.Email}, "Invitación como revisor - SIGCA",
		fmt.Sprintf(`<p>Has sido invitado(a) a participar como revisor del congreso.</p>
			<p>Completa tu registro en el siguiente enlace (vigencia de 15 minutos):</p>
			<p><a href="%s">%s</a></p>`, link, link)); err != nil {
		log.Printf("Warning: no se pudo enviar la invitación a %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible enviar la invitación"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invitación enviada"})
}

type acceptInvitationRequest struct {
	Token           string `json:"token" binding:"required"`
	UserID          string `json:"user_id" binding:"required"`
	Nombre          string `json:"nombre" binding:"required"`
	ApellidoPaterno string `json:"apellido_paterno" binding:"required"`
	ApellidoMaterno string `json:"apellido_materno"`
	Password        string `json:"password" binding:"required"`
}

// AcceptInvitation redeems a reviewer invitation and creates the reviewer
// account, already verified.
func AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	req.UserID = strings.ToUpper(utils.SanitizeInput(req.UserID))
	if !utils.ValidateRFC(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "El RFC o CURP no tiene un formato válido"})
		return
	}
	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	email, err := tokenService().Redimir(req.Token, models.TokenInvitacionRevisor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var existing models.User
	if err := config.DB.Where("user_id = ? OR email = ?", req.UserID, email).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "El usuario o correo ya está registrado"})
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible registrar al revisor"})
		return
	}

	now := time.Now()
	revisor := models.User{
		UserID:          req.UserID,
		Nombre:          req.Nombre,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: req.ApellidoMaterno,
		Email:           email,
		Password:        hashed,
		Rol:             models.RolRevisor,
		Activo:          true,
		CreateAt:        &now,
		UpdateAt:        &now,
	}
	if err := config.DB.Create(&revisor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No fue posible registrar al revisor"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Registro de revisor completado", "user": revisor})
}

package models

import "time"

// Token types.
const (
	TokenVerificacion      = "VERIFICACION"
	TokenRecuperacion      = "RECUPERACION"
	TokenInvitacionRevisor = "INVITACION_REVISOR"
)

// TokenVigencia is how long an emailed token stays valid.
const TokenVigencia = 15 * time.Minute

// Token is a single-use, email-scoped secret used for email verification,
// password reset and reviewer invitations. Creating a new token for an email
// revokes any previous active one.
type Token struct {
	TokenID    int       `gorm:"primaryKey;autoIncrement;column:token_id" json:"token_id"`
	Email      string    `gorm:"column:email" json:"email"`
	Token      string    `gorm:"column:token" json:"-"`
	Tipo       string    `gorm:"column:tipo" json:"tipo"`
	Expiracion time.Time `gorm:"column:expiracion" json:"expiracion"`
	Usado      bool      `gorm:"column:usado" json:"usado"`
	CreateAt   time.Time `gorm:"column:create_at" json:"create_at"`
}

func (Token) TableName() string {
	return "tokens"
}

// Vigente reports whether the token can still be redeemed at the given time.
func (t *Token) Vigente(now time.Time) bool {
	return !t.Usado && now.Before(t.Expiracion)
}

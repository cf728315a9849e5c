package services

import (
	"errors"

	"sigca-api/models"
)

// Principal identifies the authenticated caller of a core operation. The
// calling layer resolves it from the request; services never read ambient
// session state.
type Principal struct {
	ID  string
	Rol string
}

// PuedeDictaminar reports whether the caller may run committee operations.
func (p Principal) PuedeDictaminar() bool {
	return p.Rol == models.RolComite || p.Rol == models.RolAdmin
}

// ErrNoAutorizado is returned when the caller lacks the role or ownership a
// core operation requires.
var ErrNoAutorizado = errors.New("no cuenta con permisos para realizar esta operación")

package citas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/genomike/citasmedicas/internal/models"
)

var (
	// ErrSlotConflict is returned when a doctor already has a cita
	// holding the requested date and time.
	ErrSlotConflict = errors.New("el médico ya tiene una cita programada en esa fecha y hora")

	// ErrNoCancelable is returned when the cancellation window or the
	// current state does not allow cancelling.
	ErrNoCancelable = errors.New("la cita no se puede cancelar (debe estar programada o confirmada y con más de 2 horas de anticipación)")

	// ErrNoEliminable is returned when deleting an attended cita.
	ErrNoEliminable = errors.New("no se puede eliminar una cita ya atendida")
)

// TransicionError reports a lifecycle step not allowed from the
// current state.
type TransicionError struct {
	De models.EstadoCita
	A  models.EstadoCita
}

func (e *TransicionError) Error() string {
	return fmt.Sprintf("no se puede cambiar el estado de %s a %s", e.De, e.A)
}

// ValidationError carries the itemized field problems of a rejected
// input, mirrored one per message in the HTTP response.
type ValidationError struct {
	Errores []string
}

func (e *ValidationError) Error() string {
	return "datos inválidos: " + strings.Join(e.Errores, "; ")
}

func newValidationError(errores ...string) *ValidationError {
	return &ValidationError{Errores: errores}
}

// EsValidacion reports whether err is a ValidationError and returns it.
func EsValidacion(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// EsTransicion reports whether err is a TransicionError and returns it.
func EsTransicion(err error) (*TransicionError, bool) {
	var te *TransicionError
	ok := errors.As(err, &te)
	return te, ok
}

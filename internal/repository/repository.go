// Package repository defines the storage contract consumed by the
// lifecycle manager and the HTTP handlers, with two bindings: GORM on
// MySQL and an explicit in-memory store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/genomike/citasmedicas/internal/models"
)

var (
	// ErrNotFound is returned when an id does not resolve.
	ErrNotFound = errors.New("registro no encontrado")
	// ErrDuplicate is returned when a uniqueness invariant (dni,
	// colegio médico, email, nombre, slot de cita) would be violated.
	ErrDuplicate = errors.New("registro duplicado")
)

// EspecialidadFilter narrows specialty listings.
type EspecialidadFilter struct {
	Activo *bool
	Texto  string // matches nombre, descripcion, codigo
}

// MedicoFilter narrows doctor listings.
type MedicoFilter struct {
	EspecialidadID string
	Estado         models.EstadoMedico
	Activo         *bool
	Texto          string // matches nombres, apellidos, dni, colegioMedico
	Skip           int
	Limit          int
}

// PacienteFilter narrows patient listings.
type PacienteFilter struct {
	Activo   *bool
	Distrito string
	Texto    string // matches nombres, apellidos, dni, email
	Skip     int
	Limit    int
}

// CitaFilter narrows appointment listings. Fecha selects a single
// calendar day; FechaDesde/FechaHasta select an inclusive range.
type CitaFilter struct {
	PacienteID     string
	MedicoID       string
	EspecialidadID string
	Estado         models.EstadoCita
	Estados        []models.EstadoCita
	Fecha          *time.Time
	FechaDesde     *time.Time
	FechaHasta     *time.Time
	Texto          string // matches motivo, observaciones, patient/doctor names and dni
	Skip           int
	Limit          int
}

// EspecialidadRepository is CRUD plus lookups for specialties.
type EspecialidadRepository interface {
	GetByID(ctx context.Context, id string) (*models.Especialidad, error)
	List(ctx context.Context, f EspecialidadFilter) ([]models.Especialidad, error)
	Create(ctx context.Context, e *models.Especialidad) error
	Update(ctx context.Context, e *models.Especialidad) error
}

// MedicoRepository is CRUD plus lookups for doctors. Implementations
// return doctors with their specialty references resolved.
type MedicoRepository interface {
	GetByID(ctx context.Context, id string) (*models.Medico, error)
	List(ctx context.Context, f MedicoFilter) ([]models.Medico, error)
	Count(ctx context.Context, f MedicoFilter) (int64, error)
	Create(ctx context.Context, m *models.Medico) error
	Update(ctx context.Context, m *models.Medico) error
	CountPorEspecialidad(ctx context.Context, especialidadID string) (int64, error)
}

// PacienteRepository is CRUD plus lookups for patients.
type PacienteRepository interface {
	GetByID(ctx context.Context, id string) (*models.Paciente, error)
	List(ctx context.Context, f PacienteFilter) ([]models.Paciente, error)
	Count(ctx context.Context, f PacienteFilter) (int64, error)
	Create(ctx context.Context, p *models.Paciente) error
	Update(ctx context.Context, p *models.Paciente) error
}

// CitaRepository is CRUD plus queries for appointments. Create and
// Update are the authoritative enforcement point for slot uniqueness:
// they return ErrDuplicate when the storage constraint rejects the
// slot key.
type CitaRepository interface {
	GetByID(ctx context.Context, id string) (*models.Cita, error)
	List(ctx context.Context, f CitaFilter) ([]models.Cita, error)
	Count(ctx context.Context, f CitaFilter) (int64, error)
	Create(ctx context.Context, c *models.Cita) error
	Update(ctx context.Context, c *models.Cita) error
	Delete(ctx context.Context, id string) error
	// FindSlot returns the non-terminal appointment occupying
	// (medico, fecha, hora), excluding excludeID, or ErrNotFound.
	FindSlot(ctx context.Context, medicoID string, fecha time.Time, hora string, excludeID string) (*models.Cita, error)
}

// Store bundles the four repositories behind one handle that is built
// at process start and passed explicitly to every consumer.
type Store struct {
	Especialidades EspecialidadRepository
	Medicos        MedicoRepository
	Pacientes      PacienteRepository
	Citas          CitaRepository
}

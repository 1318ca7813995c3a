package models

import "strings"

// EstadoMedico is the employment status of a doctor.
type EstadoMedico string

const (
	MedicoActivo     EstadoMedico = "ACTIVO"
	MedicoInactivo   EstadoMedico = "INACTIVO"
	MedicoVacaciones EstadoMedico = "VACACIONES"
	MedicoLicencia   EstadoMedico = "LICENCIA"
)

// Tarifa holds the doctor's fees per visit type.
type Tarifa struct {
	Consulta float64 `json:"consulta"`
	Control  float64 `json:"control"`
}

// Medico is a doctor on staff. Especialidades must be non-empty and
// reference active specialties only.
type Medico struct {
	BaseModel
	Nombres          string         `gorm:"size:100" json:"nombres"`
	Apellidos        string         `gorm:"size:100" json:"apellidos"`
	DNI              string         `gorm:"column:dni;size:8;uniqueIndex" json:"dni"`
	ColegioMedico    string         `gorm:"size:6;uniqueIndex" json:"colegioMedico"`
	Email            string         `gorm:"size:120;uniqueIndex" json:"email"`
	Telefono         string         `gorm:"size:9" json:"telefono"`
	ExperienciaAnios int            `json:"experienciaAnios"`
	Especialidades   []Especialidad `gorm:"many2many:medico_especialidades" json:"especialidades"`
	HorarioLaboral   HorarioSemanal `gorm:"type:json" json:"horarioLaboral"`
	Tarifa           Tarifa         `gorm:"embedded;embeddedPrefix:tarifa_" json:"tarifa"`
	Estado           EstadoMedico   `gorm:"size:20;default:'ACTIVO';index" json:"estado"`
	Activo           bool           `gorm:"default:true;index" json:"activo"`
}

func (Medico) TableName() string {
	return "medicos"
}

// Normalize capitalizes names and lower-cases the email.
func (m *Medico) Normalize() {
	m.Nombres = CapitalizeName(m.Nombres)
	m.Apellidos = CapitalizeName(m.Apellidos)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
}

// NombreCompleto joins first and last names for display and search.
func (m *Medico) NombreCompleto() string {
	return m.Nombres + " " + m.Apellidos
}

// TieneEspecialidad reports whether the doctor holds the given specialty.
func (m *Medico) TieneEspecialidad(especialidadID string) bool {
	for _, e := range m.Especialidades {
		if e.ID == especialidadID {
			return true
		}
	}
	return false
}

package models

import "strings"

// Especialidad is a medical specialty offered by the hospital.
type Especialidad struct {
	BaseModel
	Nombre                   string         `gorm:"size:100;uniqueIndex" json:"nombre"`
	Descripcion              string         `gorm:"size:500" json:"descripcion"`
	Codigo                   string         `gorm:"size:6;uniqueIndex" json:"codigo"`
	DuracionConsultaMinutos  int            `gorm:"default:30" json:"duracionConsultaMinutos"`
	Precio                   float64        `json:"precio"`
	RequierePreparacion      bool           `json:"requierePreparacion"`
	InstruccionesPreparacion string         `gorm:"size:1000" json:"instruccionesPreparacion,omitempty"`
	HorarioAtencion          HorarioSemanal `gorm:"type:json" json:"horarioAtencion"`
	Prioridad                int            `gorm:"default:1" json:"prioridad"`
	Activo                   bool           `gorm:"default:true" json:"activo"`
}

func (Especialidad) TableName() string {
	return "especialidades"
}

// Normalize applies the formatting the original records carry:
// capitalized name, uppercase code, and a fallback preparation note.
func (e *Especialidad) Normalize() {
	e.Nombre = CapitalizeName(e.Nombre)
	e.Codigo = strings.ToUpper(strings.TrimSpace(e.Codigo))
	if e.RequierePreparacion && e.InstruccionesPreparacion == "" {
		e.InstruccionesPreparacion = "Consultar con el médico sobre preparación específica."
	}
}

// CapitalizeName upper-cases the first rune and lower-cases the rest.
func CapitalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EstadoCita is the lifecycle state of an appointment.
type EstadoCita string

const (
	CitaProgramada   EstadoCita = "PROGRAMADA"
	CitaConfirmada   EstadoCita = "CONFIRMADA"
	CitaEnAtencion   EstadoCita = "EN_ATENCION"
	CitaAtendida     EstadoCita = "ATENDIDA"
	CitaCancelada    EstadoCita = "CANCELADA"
	CitaNoAsistio    EstadoCita = "NO_ASISTIO"
	CitaReprogramada EstadoCita = "REPROGRAMADA"
)

// Terminal reports whether no further lifecycle transitions apply.
func (e EstadoCita) Terminal() bool {
	switch e {
	case CitaAtendida, CitaCancelada, CitaNoAsistio:
		return true
	}
	return false
}

// OcupaSlot reports whether the state holds the doctor's time slot.
// Matches the partial unique index of the citas table: only these
// three states participate in double-booking detection.
func (e EstadoCita) OcupaSlot() bool {
	switch e {
	case CitaProgramada, CitaConfirmada, CitaEnAtencion:
		return true
	}
	return false
}

// TipoCita is the kind of visit.
type TipoCita string

const (
	TipoConsulta      TipoCita = "CONSULTA"
	TipoControl       TipoCita = "CONTROL"
	TipoProcedimiento TipoCita = "PROCEDIMIENTO"
	TipoEmergencia    TipoCita = "EMERGENCIA"
)

// PrioridadCita orders appointments by urgency.
type PrioridadCita string

const (
	PrioridadBaja    PrioridadCita = "BAJA"
	PrioridadNormal  PrioridadCita = "NORMAL"
	PrioridadAlta    PrioridadCita = "ALTA"
	PrioridadUrgente PrioridadCita = "URGENTE"
)

// Costo is the appointment cost breakdown. Total is always
// consulta + procedimientos - copago, recomputed on every
// cost-relevant mutation.
type Costo struct {
	Consulta       float64 `json:"consulta"`
	Procedimientos float64 `json:"procedimientos"`
	Total          float64 `json:"total"`
}

// SeguroCita is the insurance coverage applied to one appointment.
type SeguroCita struct {
	Cubre        bool    `json:"cubre"`
	Copago       float64 `json:"copago"`
	Autorizacion string  `json:"autorizacion,omitempty"`
}

// CambioEstado is one append-only history entry.
type CambioEstado struct {
	Estado  EstadoCita `json:"estado"`
	Fecha   time.Time  `json:"fecha"`
	Motivo  string     `json:"motivo,omitempty"`
	Usuario string     `json:"usuario,omitempty"`
}

// HistorialEstados is the append-only state-change log, stored as JSON.
type HistorialEstados []CambioEstado

func (h HistorialEstados) Value() (driver.Value, error) {
	if h == nil {
		h = HistorialEstados{}
	}
	return json.Marshal(h)
}

func (h *HistorialEstados) Scan(value interface{}) error {
	if value == nil {
		*h = HistorialEstados{}
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, h)
}

// Sintoma is a reported symptom with 1-10 intensity.
type Sintoma struct {
	Descripcion string `json:"descripcion"`
	Intensidad  int    `json:"intensidad"`
	Duracion    string `json:"duracion,omitempty"`
}

// Sintomas is the symptom list, stored as JSON.
type Sintomas []Sintoma

func (s Sintomas) Value() (driver.Value, error) {
	if s == nil {
		s = Sintomas{}
	}
	return json.Marshal(s)
}

func (s *Sintomas) Scan(value interface{}) error {
	if value == nil {
		*s = Sintomas{}
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, s)
}

// Medicamento is one prescription line of an outcome record.
type Medicamento struct {
	Medicamento string `json:"medicamento"`
	Dosis       string `json:"dosis,omitempty"`
	Frecuencia  string `json:"frecuencia,omitempty"`
	Duracion    string `json:"duracion,omitempty"`
}

// ProximaCita flags whether a follow-up visit is required.
type ProximaCita struct {
	Requerida      bool   `json:"requerida"`
	Motivo         string `json:"motivo,omitempty"`
	TiempoEstimado string `json:"tiempoEstimado,omitempty"`
}

// Resultados is the clinical outcome captured when the visit completes.
type Resultados struct {
	Diagnostico string        `json:"diagnostico,omitempty"`
	Tratamiento string        `json:"tratamiento,omitempty"`
	Receta      []Medicamento `json:"receta,omitempty"`
	ProximaCita ProximaCita   `json:"proximaCita"`
}

func (r Resultados) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *Resultados) Scan(value interface{}) error {
	if value == nil {
		*r = Resultados{}
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, r)
}

// Cita is a scheduled medical appointment.
type Cita struct {
	BaseModel
	PacienteID       string           `gorm:"size:36;index:idx_citas_paciente_fecha,priority:1" json:"pacienteId"`
	MedicoID         string           `gorm:"size:36;index:idx_citas_medico_fecha_estado,priority:1" json:"medicoId"`
	EspecialidadID   string           `gorm:"size:36;index" json:"especialidadId"`
	FechaCita        time.Time        `gorm:"index:idx_citas_fecha_hora,priority:1;index:idx_citas_medico_fecha_estado,priority:2;index:idx_citas_paciente_fecha,priority:2" json:"fechaCita"`
	HoraCita         string           `gorm:"size:5;index:idx_citas_fecha_hora,priority:2" json:"horaCita"`
	DuracionMinutos  int              `gorm:"default:30" json:"duracionMinutos"`
	TipoCita         TipoCita         `gorm:"size:20;default:'CONSULTA'" json:"tipoCita"`
	Prioridad        PrioridadCita    `gorm:"size:10;default:'NORMAL'" json:"prioridad"`
	Estado           EstadoCita       `gorm:"size:20;default:'PROGRAMADA';index:idx_citas_medico_fecha_estado,priority:3" json:"estado"`
	MotivoConsulta   string           `gorm:"size:500" json:"motivoConsulta"`
	Observaciones    string           `gorm:"size:1000" json:"observaciones,omitempty"`
	Sintomas         Sintomas         `gorm:"type:json" json:"sintomas"`
	Costo            Costo            `gorm:"embedded;embeddedPrefix:costo_" json:"costo"`
	Seguro           SeguroCita       `gorm:"embedded;embeddedPrefix:seguro_" json:"seguro"`
	HistorialEstados HistorialEstados `gorm:"type:json" json:"historialEstados"`
	FechaAtencion    *time.Time       `json:"fechaAtencion,omitempty"`
	Resultados       Resultados       `gorm:"type:json" json:"resultados"`

	// SlotKey is "medicoID|fecha|hora" while Estado.OcupaSlot() and NULL
	// otherwise. MySQL exempts NULLs from UNIQUE, which emulates a
	// partial unique index over the slot-holding states.
	SlotKey *string `gorm:"size:64;uniqueIndex" json:"-"`

	Paciente     *Paciente     `gorm:"foreignKey:PacienteID" json:"paciente,omitempty"`
	Medico       *Medico       `gorm:"foreignKey:MedicoID" json:"medico,omitempty"`
	Especialidad *Especialidad `gorm:"foreignKey:EspecialidadID" json:"especialidad,omitempty"`
}

func (Cita) TableName() string {
	return "citas"
}

// FechaHoraCompleta combines FechaCita and HoraCita into one instant.
// HoraCita is assumed valid "HH:MM"; malformed values yield midnight.
func (c *Cita) FechaHoraCompleta() time.Time {
	var hh, mm int
	fmt.Sscanf(c.HoraCita, "%d:%d", &hh, &mm)
	f := c.FechaCita
	return time.Date(f.Year(), f.Month(), f.Day(), hh, mm, 0, 0, f.Location())
}

// ClaveSlot builds the uniqueness key for a doctor/date/time slot.
func ClaveSlot(medicoID string, fecha time.Time, hora string) string {
	return fmt.Sprintf("%s|%s|%s", medicoID, fecha.Format("2006-01-02"), hora)
}

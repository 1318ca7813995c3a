package models

import (
	"strings"
	"time"
)

// Direccion is the patient's home address.
type Direccion struct {
	Calle        string `json:"calle"`
	Distrito     string `json:"distrito"`
	Provincia    string `json:"provincia"`
	Departamento string `json:"departamento"`
}

// ContactoEmergencia is the person to call in an emergency.
type ContactoEmergencia struct {
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
	Relacion string `json:"relacion"`
}

// SeguroMedico is the patient's insurance information.
type SeguroMedico struct {
	Tipo   string  `json:"tipo"`
	Numero string  `json:"numero,omitempty"`
	Activo bool    `json:"activo"`
	Copago float64 `json:"copago"`
}

// Paciente is a registered patient.
type Paciente struct {
	BaseModel
	Nombres            string             `gorm:"size:100" json:"nombres"`
	Apellidos          string             `gorm:"size:100" json:"apellidos"`
	DNI                string             `gorm:"column:dni;size:8;uniqueIndex" json:"dni"`
	FechaNacimiento    time.Time          `json:"fechaNacimiento"`
	Genero             string             `gorm:"size:10" json:"genero"`
	Telefono           string             `gorm:"size:9" json:"telefono"`
	Email              string             `gorm:"size:120;uniqueIndex" json:"email"`
	Direccion          Direccion          `gorm:"embedded;embeddedPrefix:direccion_" json:"direccion"`
	ContactoEmergencia ContactoEmergencia `gorm:"embedded;embeddedPrefix:emergencia_" json:"contactoEmergencia"`
	SeguroMedico       SeguroMedico       `gorm:"embedded;embeddedPrefix:seguro_" json:"seguroMedico"`
	Activo             bool               `gorm:"default:true;index" json:"activo"`
}

func (Paciente) TableName() string {
	return "pacientes"
}

// Normalize capitalizes names and lower-cases the email.
func (p *Paciente) Normalize() {
	p.Nombres = CapitalizeName(p.Nombres)
	p.Apellidos = CapitalizeName(p.Apellidos)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.ContactoEmergencia.Nombre != "" {
		p.ContactoEmergencia.Nombre = CapitalizeName(p.ContactoEmergencia.Nombre)
	}
}

// NombreCompleto joins first and last names for display and search.
func (p *Paciente) NombreCompleto() string {
	return p.Nombres + " " + p.Apellidos
}

// Edad computes the patient's age in full years as of now.
func (p *Paciente) Edad() int {
	return EdadEn(p.FechaNacimiento, time.Now())
}

// EdadEn computes full years between a birth date and a reference date.
func EdadEn(nacimiento, ahora time.Time) int {
	edad := ahora.Year() - nacimiento.Year()
	if ahora.Month() < nacimiento.Month() ||
		(ahora.Month() == nacimiento.Month() && ahora.Day() < nacimiento.Day()) {
		edad--
	}
	return edad
}

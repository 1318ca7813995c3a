package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Day keys used by the weekly schedule templates, Sunday first so the
// index matches time.Weekday.
var DiasSemana = [7]string{"domingo", "lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}

// Ventana is a clock window expressed as "HH:MM" strings.
type Ventana struct {
	Inicio string `json:"inicio"`
	Fin    string `json:"fin"`
}

// HorarioDia is one weekday entry of a schedule template. Descanso is
// the optional lunch break used by doctor working hours.
type HorarioDia struct {
	Activo   bool     `json:"activo"`
	Inicio   string   `json:"inicio"`
	Fin      string   `json:"fin"`
	Descanso *Ventana `json:"descanso,omitempty"`
}

// HorarioSemanal maps day names (lunes..domingo) to their window.
// Stored as a JSON column.
type HorarioSemanal map[string]HorarioDia

func (h HorarioSemanal) Value() (driver.Value, error) {
	if h == nil {
		h = HorarioSemanal{}
	}
	return json.Marshal(h)
}

func (h *HorarioSemanal) Scan(value interface{}) error {
	if value == nil {
		*h = HorarioSemanal{}
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, h)
}

// Dia returns the entry for a day name, with ok=false when absent.
func (h HorarioSemanal) Dia(nombre string) (HorarioDia, bool) {
	d, ok := h[nombre]
	return d, ok
}

// HorarioSemanalDefecto mirrors the template the hospital seeds new
// records with: weekdays 08:00-17:00 active, weekend inactive mornings.
func HorarioSemanalDefecto() HorarioSemanal {
	h := HorarioSemanal{}
	for i, dia := range DiasSemana {
		switch i {
		case 0, 6: // domingo, sabado
			h[dia] = HorarioDia{Activo: false, Inicio: "08:00", Fin: "12:00"}
		default:
			h[dia] = HorarioDia{Activo: true, Inicio: "08:00", Fin: "17:00"}
		}
	}
	return h
}

func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("models: unsupported JSON column source")
	}
}

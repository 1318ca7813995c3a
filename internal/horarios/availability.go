package horarios

import (
	"time"

	"github.com/genomike/citasmedicas/internal/models"
)

// DuracionSlotDefecto is the slot length used when neither the doctor
// nor the specialty declares a typical duration.
const DuracionSlotDefecto = 30

// SlotsDisponibles resolves the weekday of fecha against a weekly
// template and generates the bookable slot starts for that day. An
// inactive or missing day yields an empty sequence. The template's
// break window, when present, is excluded. Already-booked slots are
// NOT subtracted here; the lifecycle manager checks the concrete slot
// at booking time to avoid serving stale availability.
func SlotsDisponibles(horario models.HorarioSemanal, fecha time.Time, pasoMinutos int) []string {
	if pasoMinutos <= 0 {
		pasoMinutos = DuracionSlotDefecto
	}

	dia, ok := horario.Dia(DiaSemana(fecha))
	if !ok || !dia.Activo {
		return nil
	}

	slots := GenerarSlots(dia.Inicio, dia.Fin, pasoMinutos)
	if dia.Descanso == nil {
		return slots
	}

	ini, err1 := ParseHora(dia.Descanso.Inicio)
	fin, err2 := ParseHora(dia.Descanso.Fin)
	if err1 != nil || err2 != nil || ini >= fin {
		return slots
	}

	filtrados := slots[:0]
	for _, s := range slots {
		m, _ := ParseHora(s)
		// keep slots that do not overlap the break window
		if m+pasoMinutos <= ini || m >= fin {
			filtrados = append(filtrados, s)
		}
	}
	return filtrados
}

// MedicoDisponible reports whether the doctor can receive appointments
// on the given date: on staff, status ACTIVO, and the weekday active.
func MedicoDisponible(m *models.Medico, fecha time.Time) bool {
	if m == nil || !m.Activo || m.Estado != models.MedicoActivo {
		return false
	}
	dia, ok := m.HorarioLaboral.Dia(DiaSemana(fecha))
	return ok && dia.Activo
}

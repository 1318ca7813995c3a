package horarios

import (
	"testing"
	"time"

	"github.com/genomike/citasmedicas/internal/models"
)

var (
	lunes   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	domingo = time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
)

func TestSlotsDisponibles(t *testing.T) {
	horario := models.HorarioSemanalDefecto()

	slots := SlotsDisponibles(horario, lunes, 60)
	if len(slots) != 9 {
		t.Fatalf("lunes 08:00-17:00 cada 60 min: %d slots (%v)", len(slots), slots)
	}
	if slots[0] != "08:00" || slots[len(slots)-1] != "16:00" {
		t.Errorf("bordes inesperados: %v", slots)
	}
}

func TestSlotsDisponiblesDiaInactivo(t *testing.T) {
	horario := models.HorarioSemanalDefecto()
	if s := SlotsDisponibles(horario, domingo, 30); len(s) != 0 {
		t.Errorf("domingo inactivo debe dar cero slots: %v", s)
	}

	if s := SlotsDisponibles(models.HorarioSemanal{}, lunes, 30); len(s) != 0 {
		t.Errorf("plantilla vacía debe dar cero slots: %v", s)
	}
}

func TestSlotsDisponiblesExcluyeDescanso(t *testing.T) {
	horario := models.HorarioSemanal{
		"lunes": {
			Activo:   true,
			Inicio:   "08:00",
			Fin:      "14:00",
			Descanso: &models.Ventana{Inicio: "12:00", Fin: "13:00"},
		},
	}
	slots := SlotsDisponibles(horario, lunes, 30)
	for _, s := range slots {
		if s == "12:00" || s == "12:30" {
			t.Errorf("el slot %s cae dentro del descanso", s)
		}
	}
	// the slot straddling the break start is also excluded
	horario["lunes"] = models.HorarioDia{
		Activo:   true,
		Inicio:   "08:00",
		Fin:      "14:00",
		Descanso: &models.Ventana{Inicio: "12:15", Fin: "13:00"},
	}
	for _, s := range SlotsDisponibles(horario, lunes, 30) {
		if s == "12:00" {
			t.Error("el slot 12:00 se superpone con el descanso 12:15")
		}
	}
}

func TestMedicoDisponible(t *testing.T) {
	medico := &models.Medico{
		HorarioLaboral: models.HorarioSemanalDefecto(),
		Estado:         models.MedicoActivo,
		Activo:         true,
	}
	if !MedicoDisponible(medico, lunes) {
		t.Error("médico activo en día laboral debe estar disponible")
	}
	if MedicoDisponible(medico, domingo) {
		t.Error("domingo inactivo")
	}

	medico.Estado = models.MedicoVacaciones
	if MedicoDisponible(medico, lunes) {
		t.Error("médico de vacaciones no debe estar disponible")
	}
	medico.Estado = models.MedicoActivo
	medico.Activo = false
	if MedicoDisponible(medico, lunes) {
		t.Error("médico dado de baja no debe estar disponible")
	}
	if MedicoDisponible(nil, lunes) {
		t.Error("nil no debe estar disponible")
	}
}

package models

import (
	"testing"
	"time"
)

func TestCapitalizeName(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado string
	}{
		{"cardiología", "Cardiología"},
		{"PEDIATRÍA", "Pediatría"},
		{"  neurología", "Neurología"},
		{"", ""},
	}
	for _, c := range casos {
		if got := CapitalizeName(c.entrada); got != c.esperado {
			t.Errorf("CapitalizeName(%q) = %q, se esperaba %q", c.entrada, got, c.esperado)
		}
	}
}

func TestEdadEn(t *testing.T) {
	nacimiento := time.Date(1990, 6, 15, 0, 0, 0, 0, time.Local)

	if edad := EdadEn(nacimiento, time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)); edad != 36 {
		t.Errorf("cumpleaños exacto: edad = %d", edad)
	}
	if edad := EdadEn(nacimiento, time.Date(2026, 6, 14, 0, 0, 0, 0, time.Local)); edad != 35 {
		t.Errorf("un día antes: edad = %d", edad)
	}
}

func TestEstadoCitaPredicados(t *testing.T) {
	terminales := []EstadoCita{CitaAtendida, CitaCancelada, CitaNoAsistio}
	for _, e := range terminales {
		if !e.Terminal() {
			t.Errorf("%s debe ser terminal", e)
		}
		if e.OcupaSlot() {
			t.Errorf("%s no debe ocupar slot", e)
		}
	}
	if CitaReprogramada.Terminal() || CitaReprogramada.OcupaSlot() {
		t.Error("REPROGRAMADA no es terminal y no ocupa slot")
	}
	for _, e := range []EstadoCita{CitaProgramada, CitaConfirmada, CitaEnAtencion} {
		if !e.OcupaSlot() {
			t.Errorf("%s debe ocupar slot", e)
		}
	}
}

func TestClaveSlot(t *testing.T) {
	fecha := time.Date(2026, 3, 3, 15, 4, 5, 0, time.Local)
	if got := ClaveSlot("m1", fecha, "10:30"); got != "m1|2026-03-03|10:30" {
		t.Errorf("ClaveSlot = %q", got)
	}
}

func TestEspecialidadNormalize(t *testing.T) {
	esp := Especialidad{Nombre: "cardiología", Codigo: "car", RequierePreparacion: true}
	esp.Normalize()
	if esp.Nombre != "Cardiología" || esp.Codigo != "CAR" {
		t.Errorf("normalize: %q %q", esp.Nombre, esp.Codigo)
	}
	if esp.InstruccionesPreparacion == "" {
		t.Error("debe asignarse la instrucción por defecto")
	}
}

func TestHorarioSemanalDefecto(t *testing.T) {
	h := HorarioSemanalDefecto()
	lunes, ok := h.Dia("lunes")
	if !ok || !lunes.Activo || lunes.Inicio != "08:00" || lunes.Fin != "17:00" {
		t.Errorf("lunes = %+v", lunes)
	}
	domingo, _ := h.Dia("domingo")
	if domingo.Activo {
		t.Error("domingo debe estar inactivo")
	}
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/genomike/citasmedicas/internal/models"
)

var fechaPrueba = time.Date(2026, 3, 3, 0, 0, 0, 0, time.Local)

func citaDePrueba(medicoID, hora string) *models.Cita {
	clave := models.ClaveSlot(medicoID, fechaPrueba, hora)
	return &models.Cita{
		PacienteID: "p1",
		MedicoID:   medicoID,
		FechaCita:  fechaPrueba,
		HoraCita:   hora,
		Estado:     models.CitaProgramada,
		SlotKey:    &clave,
	}
}

func TestMemoriaSlotUnico(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	primera := citaDePrueba("m1", "10:00")
	if err := store.Citas.Create(ctx, primera); err != nil {
		t.Fatalf("crear: %v", err)
	}

	if err := store.Citas.Create(ctx, citaDePrueba("m1", "10:00")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, se esperaba ErrDuplicate", err)
	}
	// same hour with another doctor is a distinct slot
	if err := store.Citas.Create(ctx, citaDePrueba("m2", "10:00")); err != nil {
		t.Fatalf("otro médico: %v", err)
	}
}

func TestMemoriaSlotSeLiberaAlActualizar(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	cita := citaDePrueba("m1", "10:00")
	if err := store.Citas.Create(ctx, cita); err != nil {
		t.Fatalf("crear: %v", err)
	}

	cita.Estado = models.CitaCancelada
	cita.SlotKey = nil
	if err := store.Citas.Update(ctx, cita); err != nil {
		t.Fatalf("actualizar: %v", err)
	}
	if err := store.Citas.Create(ctx, citaDePrueba("m1", "10:00")); err != nil {
		t.Fatalf("el slot debe quedar libre: %v", err)
	}
}

func TestMemoriaSlotEnConflictoAlMover(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	if err := store.Citas.Create(ctx, citaDePrueba("m1", "10:00")); err != nil {
		t.Fatalf("crear: %v", err)
	}
	segunda := citaDePrueba("m1", "11:00")
	if err := store.Citas.Create(ctx, segunda); err != nil {
		t.Fatalf("crear segunda: %v", err)
	}

	clave := models.ClaveSlot("m1", fechaPrueba, "10:00")
	segunda.HoraCita = "10:00"
	segunda.SlotKey = &clave
	if err := store.Citas.Update(ctx, segunda); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, se esperaba ErrDuplicate", err)
	}
}

func TestMemoriaFindSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	cita := citaDePrueba("m1", "10:00")
	if err := store.Citas.Create(ctx, cita); err != nil {
		t.Fatalf("crear: %v", err)
	}

	hallada, err := store.Citas.FindSlot(ctx, "m1", fechaPrueba, "10:00", "")
	if err != nil || hallada.ID != cita.ID {
		t.Fatalf("FindSlot = %v, %v", hallada, err)
	}
	// excluding the holder sees the slot free
	if _, err := store.Citas.FindSlot(ctx, "m1", fechaPrueba, "10:00", cita.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, se esperaba ErrNotFound", err)
	}

	// terminal states do not occupy the slot
	cita.Estado = models.CitaCancelada
	cita.SlotKey = nil
	if err := store.Citas.Update(ctx, cita); err != nil {
		t.Fatalf("actualizar: %v", err)
	}
	if _, err := store.Citas.FindSlot(ctx, "m1", fechaPrueba, "10:00", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, se esperaba ErrNotFound", err)
	}
}

func TestMemoriaDuplicadosDeEntidades(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	esp := models.Especialidad{Nombre: "Pediatría", Codigo: "PED", Activo: true}
	if err := store.Especialidades.Create(ctx, &esp); err != nil {
		t.Fatalf("crear: %v", err)
	}
	repetida := models.Especialidad{Nombre: "pediatría", Codigo: "PE2"}
	if err := store.Especialidades.Create(ctx, &repetida); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("nombre repetido: err = %v", err)
	}

	pac := models.Paciente{Nombres: "Ana", Apellidos: "Torres", DNI: "12345678", Email: "ana@mail.com", Activo: true}
	if err := store.Pacientes.Create(ctx, &pac); err != nil {
		t.Fatalf("crear paciente: %v", err)
	}
	otro := models.Paciente{Nombres: "Otro", Apellidos: "Paciente", DNI: "12345678", Email: "otro@mail.com"}
	if err := store.Pacientes.Create(ctx, &otro); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("dni repetido: err = %v", err)
	}
}

func TestMemoriaListarCitasFiltra(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	for i, hora := range []string{"09:00", "10:00", "11:00"} {
		c := citaDePrueba("m1", hora)
		if i == 2 {
			c.Estado = models.CitaConfirmada
		}
		if err := store.Citas.Create(ctx, c); err != nil {
			t.Fatalf("crear %s: %v", hora, err)
		}
	}
	ayer := fechaPrueba.AddDate(0, 0, -1)
	fueraDeRango := citaDePrueba("m1", "09:00")
	fueraDeRango.FechaCita = ayer
	clave := models.ClaveSlot("m1", ayer, "09:00")
	fueraDeRango.SlotKey = &clave
	if err := store.Citas.Create(ctx, fueraDeRango); err != nil {
		t.Fatalf("crear ayer: %v", err)
	}

	dia, err := store.Citas.List(ctx, CitaFilter{Fecha: &fechaPrueba})
	if err != nil || len(dia) != 3 {
		t.Fatalf("por fecha: %d, %v", len(dia), err)
	}
	if dia[0].HoraCita != "09:00" || dia[2].HoraCita != "11:00" {
		t.Errorf("orden inesperado: %v %v", dia[0].HoraCita, dia[2].HoraCita)
	}

	confirmadas, err := store.Citas.List(ctx, CitaFilter{Estado: models.CitaConfirmada})
	if err != nil || len(confirmadas) != 1 {
		t.Fatalf("por estado: %d, %v", len(confirmadas), err)
	}

	pagina, err := store.Citas.List(ctx, CitaFilter{Fecha: &fechaPrueba, Skip: 1, Limit: 1})
	if err != nil || len(pagina) != 1 || pagina[0].HoraCita != "10:00" {
		t.Fatalf("paginado: %+v, %v", pagina, err)
	}
}

package citas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
)

// ahoraFija is a Monday morning; all appointments in these tests land
// on the following Tuesday unless stated otherwise.
var ahoraFija = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

const (
	fechaManana = "2026-03-03"
	horaManana  = "10:00"
)

type fixture struct {
	svc          *Service
	store        *repository.Store
	especialidad models.Especialidad
	medico       models.Medico
	paciente     models.Paciente
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := repository.NewMemoryStore()
	store := mem.Store()

	esp := models.Especialidad{
		Nombre:                  "Cardiología",
		Descripcion:             "Atención cardiovascular",
		Codigo:                  "CAR",
		DuracionConsultaMinutos: 30,
		Precio:                  80,
		Prioridad:               3,
		HorarioAtencion:         models.HorarioSemanalDefecto(),
		Activo:                  true,
	}
	if err := store.Especialidades.Create(ctx, &esp); err != nil {
		t.Fatalf("crear especialidad: %v", err)
	}

	med := models.Medico{
		Nombres:        "Carlos",
		Apellidos:      "Mendoza",
		DNI:            "45678912",
		ColegioMedico:  "123456",
		Email:          "carlos.mendoza@hospital.pe",
		Telefono:       "987654321",
		Especialidades: []models.Especialidad{esp},
		HorarioLaboral: models.HorarioSemanalDefecto(),
		Tarifa:         models.Tarifa{Consulta: 100, Control: 60},
		Estado:         models.MedicoActivo,
		Activo:         true,
	}
	if err := store.Medicos.Create(ctx, &med); err != nil {
		t.Fatalf("crear medico: %v", err)
	}

	pac := models.Paciente{
		Nombres:         "Ana",
		Apellidos:       "Torres",
		DNI:             "12345678",
		FechaNacimiento: time.Date(1990, 5, 14, 0, 0, 0, 0, time.Local),
		Genero:          "F",
		Telefono:        "912345678",
		Email:           "ana.torres@mail.com",
		SeguroMedico:    models.SeguroMedico{Tipo: "EPS", Activo: true, Copago: 30},
		Activo:          true,
	}
	if err := store.Pacientes.Create(ctx, &pac); err != nil {
		t.Fatalf("crear paciente: %v", err)
	}

	svc := NewService(store)
	svc.ahora = func() time.Time { return ahoraFija }
	return &fixture{svc: svc, store: store, especialidad: esp, medico: med, paciente: pac}
}

func (f *fixture) crearInput() CrearCitaInput {
	return CrearCitaInput{
		PacienteID:     f.paciente.ID,
		MedicoID:       f.medico.ID,
		EspecialidadID: f.especialidad.ID,
		FechaCita:      fechaManana,
		HoraCita:       horaManana,
		MotivoConsulta: "Dolor en el pecho",
	}
}

func (f *fixture) crearCita(t *testing.T) *models.Cita {
	t.Helper()
	cita, err := f.svc.Crear(context.Background(), f.crearInput())
	if err != nil {
		t.Fatalf("crear cita: %v", err)
	}
	return cita
}

func TestCrearCita(t *testing.T) {
	f := newFixture(t)
	cita := f.crearCita(t)

	if cita.Estado != models.CitaProgramada {
		t.Errorf("estado = %s, se esperaba PROGRAMADA", cita.Estado)
	}
	if cita.DuracionMinutos != 30 {
		t.Errorf("duracion = %d, se esperaba 30", cita.DuracionMinutos)
	}
	if len(cita.HistorialEstados) != 1 || cita.HistorialEstados[0].Estado != models.CitaProgramada {
		t.Errorf("historial inesperado: %+v", cita.HistorialEstados)
	}
	if cita.Paciente == nil || cita.Medico == nil || cita.Especialidad == nil {
		t.Error("la cita debe devolverse con sus referencias resueltas")
	}
}

func TestCrearCitaCalculaCosto(t *testing.T) {
	f := newFixture(t)
	in := f.crearInput()
	in.CostoProcedimientos = 50

	cita, err := f.svc.Crear(context.Background(), in)
	if err != nil {
		t.Fatalf("crear cita: %v", err)
	}
	// tarifa 100 + procedimientos 50 - copago 30
	if cita.Costo.Consulta != 100 || cita.Costo.Total != 120 {
		t.Errorf("costo = %+v, se esperaba consulta 100 y total 120", cita.Costo)
	}
	if !cita.Seguro.Cubre || cita.Seguro.Copago != 30 {
		t.Errorf("seguro = %+v", cita.Seguro)
	}
}

func TestCrearCitaRechazaTotalNegativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	caro := f.paciente
	caro.ID = ""
	caro.DNI = "87654321"
	caro.Email = "otra@mail.com"
	caro.SeguroMedico.Copago = 500
	if err := f.store.Pacientes.Create(ctx, &caro); err != nil {
		t.Fatalf("crear paciente: %v", err)
	}

	in := f.crearInput()
	in.PacienteID = caro.ID
	if _, err := f.svc.Crear(ctx, in); err == nil {
		t.Fatal("se esperaba error de validación por total negativo")
	} else if _, ok := EsValidacion(err); !ok {
		t.Fatalf("se esperaba ValidationError, hubo %v", err)
	}
}

func TestCrearCitaConflictoDeSlot(t *testing.T) {
	f := newFixture(t)
	f.crearCita(t)

	otra := f.crearInput()
	otra.MotivoConsulta = "Control de presión"
	if _, err := f.svc.Crear(context.Background(), otra); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("err = %v, se esperaba ErrSlotConflict", err)
	}

	// a different hour on the same day is free
	otra.HoraCita = "10:30"
	if _, err := f.svc.Crear(context.Background(), otra); err != nil {
		t.Fatalf("crear en otro slot: %v", err)
	}
}

func TestCrearCitaValidaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	casos := []struct {
		nombre string
		mutar  func(*CrearCitaInput)
	}{
		{nombre: "fecha pasada", mutar: func(in *CrearCitaInput) { in.FechaCita = "2026-02-27" }},
		{nombre: "hora fuera de horario", mutar: func(in *CrearCitaInput) { in.HoraCita = "22:00" }},
		{nombre: "hora desalineada", mutar: func(in *CrearCitaInput) { in.HoraCita = "10:15" }},
		{nombre: "domingo inactivo", mutar: func(in *CrearCitaInput) { in.FechaCita = "2026-03-08" }},
		{nombre: "hora malformada", mutar: func(in *CrearCitaInput) { in.HoraCita = "diez" }},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			in := f.crearInput()
			c.mutar(&in)
			_, err := f.svc.Crear(ctx, in)
			if err == nil {
				t.Fatal("se esperaba error")
			}
			if _, ok := EsValidacion(err); !ok {
				t.Fatalf("se esperaba ValidationError, hubo %v", err)
			}
		})
	}

	in := f.crearInput()
	in.MedicoID = "no-existe"
	if _, err := f.svc.Crear(ctx, in); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, se esperaba ErrNotFound", err)
	}
}

func TestCrearCitaPermiteHoy(t *testing.T) {
	f := newFixture(t)

	// The clock is fixed at 09:00; a cita for today at 08:00 is still
	// valid because only dates before today are rejected.
	in := f.crearInput()
	in.FechaCita = "2026-03-02"
	in.HoraCita = "08:00"

	cita, err := f.svc.Crear(context.Background(), in)
	if err != nil {
		t.Fatalf("crear cita de hoy: %v", err)
	}
	if cita.Estado != models.CitaProgramada {
		t.Errorf("estado = %s, se esperaba PROGRAMADA", cita.Estado)
	}
}

func TestCicloCompletoDeAtencion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	cita, err := f.svc.Confirmar(ctx, cita.ID, "recepcion")
	if err != nil {
		t.Fatalf("confirmar: %v", err)
	}
	if cita.Estado != models.CitaConfirmada {
		t.Fatalf("estado = %s", cita.Estado)
	}

	cita, err = f.svc.Atender(ctx, cita.ID, "")
	if err != nil {
		t.Fatalf("atender: %v", err)
	}
	if cita.Estado != models.CitaEnAtencion {
		t.Fatalf("estado = %s", cita.Estado)
	}

	cita, err = f.svc.Completar(ctx, cita.ID, CompletarInput{
		Resultados: models.Resultados{Diagnostico: "Hipertensión leve", Tratamiento: "Dieta y control"},
	})
	if err != nil {
		t.Fatalf("completar: %v", err)
	}
	if cita.Estado != models.CitaAtendida {
		t.Fatalf("estado = %s", cita.Estado)
	}
	if cita.FechaAtencion == nil || !cita.FechaAtencion.Equal(ahoraFija) {
		t.Errorf("fechaAtencion = %v", cita.FechaAtencion)
	}
	if cita.Resultados.Diagnostico != "Hipertensión leve" {
		t.Errorf("resultados = %+v", cita.Resultados)
	}
	if len(cita.HistorialEstados) != 4 {
		t.Errorf("historial con %d entradas, se esperaban 4", len(cita.HistorialEstados))
	}
}

func TestConfirmarDosVecesFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	if _, err := f.svc.Confirmar(ctx, cita.ID, ""); err != nil {
		t.Fatalf("confirmar: %v", err)
	}
	_, err := f.svc.Confirmar(ctx, cita.ID, "")
	if err == nil {
		t.Fatal("la segunda confirmación debe fallar")
	}
	te, ok := EsTransicion(err)
	if !ok {
		t.Fatalf("se esperaba TransicionError, hubo %v", err)
	}
	if te.De != models.CitaConfirmada || te.A != models.CitaConfirmada {
		t.Errorf("transición reportada: %s a %s", te.De, te.A)
	}
}

func TestTransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	if _, err := f.svc.Completar(ctx, cita.ID, CompletarInput{}); err == nil {
		t.Fatal("completar sin atender debe fallar")
	} else if te, ok := EsTransicion(err); !ok || te.De != models.CitaProgramada {
		t.Fatalf("err = %v", err)
	}

	if _, err := f.svc.Cancelar(ctx, cita.ID, CancelarInput{Motivo: "ya no deseo"}); err != nil {
		t.Fatalf("cancelar: %v", err)
	}
	if _, err := f.svc.Confirmar(ctx, cita.ID, ""); err == nil {
		t.Fatal("confirmar una cita cancelada debe fallar")
	}
	if _, err := f.svc.Atender(ctx, cita.ID, ""); err == nil {
		t.Fatal("atender una cita cancelada debe fallar")
	}
}

func TestCancelarRespetaVentana(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// appointment exactly 90 minutes ahead: Monday 10:30 seen from 09:00
	in := f.crearInput()
	in.FechaCita = "2026-03-02"
	in.HoraCita = "10:30"
	cita, err := f.svc.Crear(ctx, in)
	if err != nil {
		t.Fatalf("crear cita: %v", err)
	}

	if _, err := f.svc.Cancelar(ctx, cita.ID, CancelarInput{}); !errors.Is(err, ErrNoCancelable) {
		t.Fatalf("err = %v, se esperaba ErrNoCancelable", err)
	}

	lejana := f.crearCita(t)
	cancelada, err := f.svc.Cancelar(ctx, lejana.ID, CancelarInput{Motivo: "Viaje imprevisto"})
	if err != nil {
		t.Fatalf("cancelar: %v", err)
	}
	if cancelada.Estado != models.CitaCancelada {
		t.Fatalf("estado = %s", cancelada.Estado)
	}
	ultimo := cancelada.HistorialEstados[len(cancelada.HistorialEstados)-1]
	if ultimo.Motivo != "Viaje imprevisto" {
		t.Errorf("motivo = %q", ultimo.Motivo)
	}
}

func TestCancelarLiberaElSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	if _, err := f.svc.Cancelar(ctx, cita.ID, CancelarInput{}); err != nil {
		t.Fatalf("cancelar: %v", err)
	}
	// the slot is bookable again
	if _, err := f.svc.Crear(ctx, f.crearInput()); err != nil {
		t.Fatalf("rebooking tras cancelar: %v", err)
	}
}

func TestReprogramar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	rep, err := f.svc.Reprogramar(ctx, cita.ID, ReprogramarInput{
		NuevaFecha: "2026-03-04",
		NuevaHora:  "11:00",
		Motivo:     "A pedido del paciente",
	})
	if err != nil {
		t.Fatalf("reprogramar: %v", err)
	}
	if rep.Estado != models.CitaReprogramada {
		t.Fatalf("estado = %s", rep.Estado)
	}
	if rep.FechaCita.Format("2006-01-02") != "2026-03-04" || rep.HoraCita != "11:00" {
		t.Errorf("nuevo slot = %s %s", rep.FechaCita.Format("2006-01-02"), rep.HoraCita)
	}

	// the old slot is released
	if _, err := f.svc.Crear(ctx, f.crearInput()); err != nil {
		t.Fatalf("el slot original debe quedar libre: %v", err)
	}

	// confirming reclaims the new slot
	conf, err := f.svc.Confirmar(ctx, rep.ID, "")
	if err != nil {
		t.Fatalf("confirmar reprogramada: %v", err)
	}
	if conf.Estado != models.CitaConfirmada {
		t.Fatalf("estado = %s", conf.Estado)
	}
	in := f.crearInput()
	in.FechaCita = "2026-03-04"
	in.HoraCita = "11:00"
	if _, err := f.svc.Crear(ctx, in); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("err = %v, se esperaba ErrSlotConflict en el slot reclamado", err)
	}
}

func TestReprogramarConflictoEnDestino(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.crearCita(t)

	in := f.crearInput()
	in.HoraCita = "11:00"
	otra, err := f.svc.Crear(ctx, in)
	if err != nil {
		t.Fatalf("crear segunda cita: %v", err)
	}

	_, err = f.svc.Reprogramar(ctx, otra.ID, ReprogramarInput{NuevaFecha: fechaManana, NuevaHora: horaManana})
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("err = %v, se esperaba ErrSlotConflict", err)
	}
}

func TestNoAsistio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	marcada, err := f.svc.NoAsistio(ctx, cita.ID, "recepcion")
	if err != nil {
		t.Fatalf("no asistio: %v", err)
	}
	if marcada.Estado != models.CitaNoAsistio {
		t.Fatalf("estado = %s", marcada.Estado)
	}
	// the slot is released
	if _, err := f.svc.Crear(ctx, f.crearInput()); err != nil {
		t.Fatalf("rebooking tras no-asistio: %v", err)
	}
}

func TestActualizarRecalculaTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	proc := 40.0
	obs := "Paciente con antecedentes familiares"
	act, err := f.svc.Actualizar(ctx, cita.ID, ActualizarCitaInput{
		Observaciones:       &obs,
		CostoProcedimientos: &proc,
	})
	if err != nil {
		t.Fatalf("actualizar: %v", err)
	}
	if act.Costo.Total != 100+40-30 {
		t.Errorf("total = %v, se esperaba 110", act.Costo.Total)
	}
	if act.Observaciones != obs {
		t.Errorf("observaciones = %q", act.Observaciones)
	}
}

func TestEliminar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cita := f.crearCita(t)

	if _, err := f.svc.Atender(ctx, cita.ID, ""); err != nil {
		t.Fatalf("atender: %v", err)
	}
	if _, err := f.svc.Completar(ctx, cita.ID, CompletarInput{}); err != nil {
		t.Fatalf("completar: %v", err)
	}
	if err := f.svc.Eliminar(ctx, cita.ID); !errors.Is(err, ErrNoEliminable) {
		t.Fatalf("err = %v, se esperaba ErrNoEliminable", err)
	}

	otra := f.crearCita(t)
	if err := f.svc.Eliminar(ctx, otra.ID); err != nil {
		t.Fatalf("eliminar: %v", err)
	}
	if _, err := f.svc.Obtener(ctx, otra.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, se esperaba ErrNotFound", err)
	}
}

func TestListarPagina(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	horas := []string{"08:00", "08:30", "09:00", "09:30", "10:00"}
	for _, h := range horas {
		in := f.crearInput()
		in.HoraCita = h
		if _, err := f.svc.Crear(ctx, in); err != nil {
			t.Fatalf("crear %s: %v", h, err)
		}
	}

	lista, pag, err := f.svc.Listar(ctx, ListarParams{Pagina: 2, PorPagina: 2})
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	if pag.Total != 5 || pag.TotalPaginas != 3 {
		t.Fatalf("paginacion = %+v", pag)
	}
	if len(lista) != 2 || lista[0].HoraCita != "09:00" {
		t.Fatalf("pagina inesperada: %d citas, primera %s", len(lista), lista[0].HoraCita)
	}
}

func TestHoy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.crearInput()
	in.FechaCita = ahoraFija.Format("2006-01-02")
	in.HoraCita = "15:00"
	cita, err := f.svc.Crear(ctx, in)
	if err != nil {
		t.Fatalf("crear cita de hoy: %v", err)
	}
	if _, err := f.svc.Confirmar(ctx, cita.ID, ""); err != nil {
		t.Fatalf("confirmar: %v", err)
	}
	f.crearCita(t) // tomorrow, must not appear

	resumen, err := f.svc.Hoy(ctx)
	if err != nil {
		t.Fatalf("hoy: %v", err)
	}
	if resumen.Total != 1 || resumen.PorEstado[models.CitaConfirmada] != 1 {
		t.Fatalf("resumen = %+v", resumen)
	}
}

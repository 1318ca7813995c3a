// Package citas implements the appointment lifecycle: creation with
// availability and conflict checks, the confirm / cancel / reschedule /
// attend / complete / no-show transitions, and the derived cost and
// state-history bookkeeping.
package citas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/genomike/citasmedicas/internal/horarios"
	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
)

// HorasMinimasCancelacion is the minimum lead time for cancelling.
const HorasMinimasCancelacion = 2

// transiciones lists the target states reachable from each state via
// the dedicated lifecycle operations. Cancellation is gated separately
// by SePuedeCancelar.
var transiciones = map[models.EstadoCita][]models.EstadoCita{
	models.CitaProgramada:   {models.CitaConfirmada, models.CitaEnAtencion, models.CitaReprogramada, models.CitaNoAsistio},
	models.CitaConfirmada:   {models.CitaEnAtencion, models.CitaReprogramada, models.CitaNoAsistio},
	models.CitaEnAtencion:   {models.CitaAtendida, models.CitaNoAsistio},
	models.CitaReprogramada: {models.CitaConfirmada, models.CitaNoAsistio},
}

func puedeTransicionar(de, a models.EstadoCita) bool {
	for _, destino := range transiciones[de] {
		if destino == a {
			return true
		}
	}
	return false
}

// Service coordinates appointment operations over the storage layer.
// The clock is injectable so lead-time rules are testable.
type Service struct {
	store *repository.Store
	ahora func() time.Time
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store, ahora: time.Now}
}

// CrearCitaInput is the explicit creation schema. FechaCita travels as
// "YYYY-MM-DD" like the rest of the API.
type CrearCitaInput struct {
	PacienteID          string               `json:"pacienteId" binding:"required"`
	MedicoID            string               `json:"medicoId" binding:"required"`
	EspecialidadID      string               `json:"especialidadId" binding:"required"`
	FechaCita           string               `json:"fechaCita" binding:"required,datetime=2006-01-02"`
	HoraCita            string               `json:"horaCita" binding:"required"`
	TipoCita            models.TipoCita      `json:"tipoCita" binding:"omitempty,oneof=CONSULTA CONTROL PROCEDIMIENTO EMERGENCIA"`
	Prioridad           models.PrioridadCita `json:"prioridad" binding:"omitempty,oneof=BAJA NORMAL ALTA URGENTE"`
	MotivoConsulta      string               `json:"motivoConsulta" binding:"required,max=500"`
	Observaciones       string               `json:"observaciones" binding:"max=1000"`
	Sintomas            models.Sintomas      `json:"sintomas" binding:"omitempty,dive"`
	CostoProcedimientos float64              `json:"costoProcedimientos" binding:"min=0"`
	Usuario             string               `json:"usuario"`
}

// ActualizarCitaInput is the partial-update schema; nil fields keep
// their stored value.
type ActualizarCitaInput struct {
	MotivoConsulta      *string               `json:"motivoConsulta" binding:"omitempty,max=500"`
	Observaciones       *string               `json:"observaciones" binding:"omitempty,max=1000"`
	Sintomas            *models.Sintomas      `json:"sintomas" binding:"omitempty,dive"`
	TipoCita            *models.TipoCita      `json:"tipoCita" binding:"omitempty,oneof=CONSULTA CONTROL PROCEDIMIENTO EMERGENCIA"`
	Prioridad           *models.PrioridadCita `json:"prioridad" binding:"omitempty,oneof=BAJA NORMAL ALTA URGENTE"`
	CostoProcedimientos *float64              `json:"costoProcedimientos" binding:"omitempty,min=0"`
}

// CancelarInput carries the optional cancellation reason.
type CancelarInput struct {
	Motivo  string `json:"motivo" binding:"max=500"`
	Usuario string `json:"usuario"`
}

// ReprogramarInput moves a cita to a new slot.
type ReprogramarInput struct {
	NuevaFecha string `json:"nuevaFecha" binding:"required,datetime=2006-01-02"`
	NuevaHora  string `json:"nuevaHora" binding:"required"`
	Motivo     string `json:"motivo" binding:"max=500"`
	Usuario    string `json:"usuario"`
}

// CompletarInput records the clinical outcome when the visit ends.
type CompletarInput struct {
	Resultados models.Resultados `json:"resultados"`
	Usuario    string            `json:"usuario"`
}

// ListarParams combines listing filters with pagination. Pagina and
// PorPagina default to 1 and 20.
type ListarParams struct {
	Filtro    repository.CitaFilter
	Pagina    int
	PorPagina int
}

// Pagina describes one page of a listing.
type Pagina struct {
	Total        int64 `json:"total"`
	Pagina       int   `json:"pagina"`
	PorPagina    int   `json:"porPagina"`
	TotalPaginas int   `json:"totalPaginas"`
}

// ResumenHoy is today's agenda with per-state counts.
type ResumenHoy struct {
	Fecha     string                    `json:"fecha"`
	Total     int                       `json:"total"`
	PorEstado map[models.EstadoCita]int `json:"porEstado"`
	Citas     []models.Cita             `json:"citas"`
}

// calcularTotal recomputes Costo.Total from its components and rejects
// a negative result instead of persisting it.
func calcularTotal(c *models.Cita) error {
	total := c.Costo.Consulta + c.Costo.Procedimientos - c.Seguro.Copago
	if total < 0 {
		return newValidationError("el costo total no puede ser negativo: el copago excede el costo de la cita")
	}
	c.Costo.Total = total
	return nil
}

// registrarCambio appends one entry to the state history.
func (s *Service) registrarCambio(c *models.Cita, estado models.EstadoCita, motivo, usuario string) {
	if usuario == "" {
		usuario = "sistema"
	}
	c.HistorialEstados = append(c.HistorialEstados, models.CambioEstado{
		Estado:  estado,
		Fecha:   s.ahora(),
		Motivo:  motivo,
		Usuario: usuario,
	})
}

// actualizarSlotKey keeps the uniqueness key in step with the state:
// set while the state holds the slot, cleared otherwise.
func actualizarSlotKey(c *models.Cita) {
	if c.Estado.OcupaSlot() {
		clave := models.ClaveSlot(c.MedicoID, c.FechaCita, c.HoraCita)
		c.SlotKey = &clave
	} else {
		c.SlotKey = nil
	}
}

// SePuedeCancelar applies the cancellation rule: only programada or
// confirmada citas, and only with more than two hours of lead time.
func SePuedeCancelar(c *models.Cita, ahora time.Time) bool {
	if c.Estado != models.CitaProgramada && c.Estado != models.CitaConfirmada {
		return false
	}
	return c.FechaHoraCompleta().Sub(ahora) > HorasMinimasCancelacion*time.Hour
}

func parseFecha(valor string) (time.Time, error) {
	f, err := time.ParseInLocation("2006-01-02", valor, time.Local)
	if err != nil {
		return time.Time{}, newValidationError(fmt.Sprintf("fecha %q inválida, se espera YYYY-MM-DD", valor))
	}
	return f, nil
}

// validarSlot checks that the doctor can attend the given date and
// that the requested time is one of the day's generated slots.
func (s *Service) validarSlot(m *models.Medico, fecha time.Time, hora string, duracion int) error {
	if _, err := horarios.ParseHora(hora); err != nil {
		return newValidationError(fmt.Sprintf("hora %q inválida, se espera HH:MM", hora))
	}
	if !horarios.MedicoDisponible(m, fecha) {
		return newValidationError("el médico no atiende en la fecha solicitada")
	}
	for _, slot := range horarios.SlotsDisponibles(m.HorarioLaboral, fecha, duracion) {
		if slot == hora {
			return nil
		}
	}
	return newValidationError("la hora solicitada está fuera del horario de atención del médico")
}

// verificarDisponibilidad is the optimistic pre-check before writing;
// the storage constraint remains the authority under concurrency.
func (s *Service) verificarDisponibilidad(ctx context.Context, medicoID string, fecha time.Time, hora, excludeID string) error {
	_, err := s.store.Citas.FindSlot(ctx, medicoID, fecha, hora, excludeID)
	switch {
	case err == nil:
		return ErrSlotConflict
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func traducirDuplicado(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrSlotConflict
	}
	return err
}

// Crear validates references, availability and the slot, then books
// the cita in estado PROGRAMADA with its cost derived from the
// specialty price, the doctor's fee and the patient's copago.
func (s *Service) Crear(ctx context.Context, in CrearCitaInput) (*models.Cita, error) {
	fecha, err := parseFecha(in.FechaCita)
	if err != nil {
		return nil, err
	}

	paciente, err := s.store.Pacientes.GetByID(ctx, in.PacienteID)
	if err != nil {
		return nil, fmt.Errorf("paciente: %w", err)
	}
	if !paciente.Activo {
		return nil, newValidationError("el paciente no está activo")
	}

	medico, err := s.store.Medicos.GetByID(ctx, in.MedicoID)
	if err != nil {
		return nil, fmt.Errorf("médico: %w", err)
	}

	especialidad, err := s.store.Especialidades.GetByID(ctx, in.EspecialidadID)
	if err != nil {
		return nil, fmt.Errorf("especialidad: %w", err)
	}
	if !especialidad.Activo {
		return nil, newValidationError("la especialidad no está activa")
	}
	if !medico.TieneEspecialidad(especialidad.ID) {
		return nil, newValidationError("el médico no atiende la especialidad solicitada")
	}

	duracion := especialidad.DuracionConsultaMinutos
	if duracion <= 0 {
		duracion = horarios.DuracionSlotDefecto
	}
	if err := s.validarSlot(medico, fecha, in.HoraCita, duracion); err != nil {
		return nil, err
	}
	// Same-day citas are allowed regardless of the hour; only dates
	// before today are rejected.
	if fecha.Before(horarios.InicioDelDia(s.ahora())) {
		return nil, newValidationError("la fecha de la cita no puede ser pasada")
	}
	if err := s.verificarDisponibilidad(ctx, medico.ID, fecha, in.HoraCita, ""); err != nil {
		return nil, err
	}

	tipo := in.TipoCita
	if tipo == "" {
		tipo = models.TipoConsulta
	}
	prioridad := in.Prioridad
	if prioridad == "" {
		prioridad = models.PrioridadNormal
	}

	cita := &models.Cita{
		PacienteID:      paciente.ID,
		MedicoID:        medico.ID,
		EspecialidadID:  especialidad.ID,
		FechaCita:       fecha,
		HoraCita:        in.HoraCita,
		DuracionMinutos: duracion,
		TipoCita:        tipo,
		Prioridad:       prioridad,
		Estado:          models.CitaProgramada,
		MotivoConsulta:  in.MotivoConsulta,
		Observaciones:   in.Observaciones,
		Sintomas:        in.Sintomas,
		Costo: models.Costo{
			Consulta:       precioConsulta(especialidad, medico, tipo),
			Procedimientos: in.CostoProcedimientos,
		},
	}
	if paciente.SeguroMedico.Activo {
		cita.Seguro = models.SeguroCita{Cubre: true, Copago: paciente.SeguroMedico.Copago}
	}
	if err := calcularTotal(cita); err != nil {
		return nil, err
	}
	s.registrarCambio(cita, models.CitaProgramada, "Cita creada", in.Usuario)
	actualizarSlotKey(cita)

	if err := s.store.Citas.Create(ctx, cita); err != nil {
		return nil, traducirDuplicado(err)
	}
	return s.store.Citas.GetByID(ctx, cita.ID)
}

// precioConsulta picks the base fee: the doctor's control fee for
// CONTROL visits when declared, the specialty price otherwise.
func precioConsulta(e *models.Especialidad, m *models.Medico, tipo models.TipoCita) float64 {
	if tipo == models.TipoControl && m.Tarifa.Control > 0 {
		return m.Tarifa.Control
	}
	if m.Tarifa.Consulta > 0 {
		return m.Tarifa.Consulta
	}
	return e.Precio
}

// Obtener returns one cita with its references resolved.
func (s *Service) Obtener(ctx context.Context, id string) (*models.Cita, error) {
	return s.store.Citas.GetByID(ctx, id)
}

// Listar returns one page of citas plus pagination metadata.
func (s *Service) Listar(ctx context.Context, p ListarParams) ([]models.Cita, *Pagina, error) {
	if p.Pagina < 1 {
		p.Pagina = 1
	}
	if p.PorPagina < 1 {
		p.PorPagina = 20
	}
	f := p.Filtro
	f.Skip = (p.Pagina - 1) * p.PorPagina
	f.Limit = p.PorPagina

	total, err := s.store.Citas.Count(ctx, p.Filtro)
	if err != nil {
		return nil, nil, err
	}
	lista, err := s.store.Citas.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	paginas := int((total + int64(p.PorPagina) - 1) / int64(p.PorPagina))
	return lista, &Pagina{Total: total, Pagina: p.Pagina, PorPagina: p.PorPagina, TotalPaginas: paginas}, nil
}

// Buscar runs the free-text search over motivo, observaciones and the
// referenced patient and doctor names.
func (s *Service) Buscar(ctx context.Context, texto string, p ListarParams) ([]models.Cita, *Pagina, error) {
	p.Filtro.Texto = texto
	return s.Listar(ctx, p)
}

// Hoy returns today's agenda with per-state counts.
func (s *Service) Hoy(ctx context.Context) (*ResumenHoy, error) {
	hoy := s.ahora()
	lista, err := s.store.Citas.List(ctx, repository.CitaFilter{Fecha: &hoy})
	if err != nil {
		return nil, err
	}
	resumen := &ResumenHoy{
		Fecha:     hoy.Format("2006-01-02"),
		Total:     len(lista),
		PorEstado: make(map[models.EstadoCita]int),
		Citas:     lista,
	}
	for _, c := range lista {
		resumen.PorEstado[c.Estado]++
	}
	return resumen, nil
}

// Actualizar applies a partial update to an editable cita. Terminal
// citas cannot be edited.
func (s *Service) Actualizar(ctx context.Context, id string, in ActualizarCitaInput) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cita.Estado.Terminal() {
		return nil, newValidationError("no se puede modificar una cita en estado " + string(cita.Estado))
	}

	if in.MotivoConsulta != nil {
		cita.MotivoConsulta = *in.MotivoConsulta
	}
	if in.Observaciones != nil {
		cita.Observaciones = *in.Observaciones
	}
	if in.Sintomas != nil {
		cita.Sintomas = *in.Sintomas
	}
	if in.TipoCita != nil {
		cita.TipoCita = *in.TipoCita
	}
	if in.Prioridad != nil {
		cita.Prioridad = *in.Prioridad
	}
	if in.CostoProcedimientos != nil {
		cita.Costo.Procedimientos = *in.CostoProcedimientos
	}
	if err := calcularTotal(cita); err != nil {
		return nil, err
	}
	if err := s.store.Citas.Update(ctx, cita); err != nil {
		return nil, traducirDuplicado(err)
	}
	return s.store.Citas.GetByID(ctx, id)
}

// Eliminar removes a cita. Attended citas are kept as clinical record.
func (s *Service) Eliminar(ctx context.Context, id string) error {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cita.Estado == models.CitaAtendida {
		return ErrNoEliminable
	}
	return s.store.Citas.Delete(ctx, id)
}

// cambiarEstado runs the shared transition machinery: guard, history
// entry, slot-key refresh and persistence.
func (s *Service) cambiarEstado(ctx context.Context, cita *models.Cita, a models.EstadoCita, motivo, usuario string) (*models.Cita, error) {
	if !puedeTransicionar(cita.Estado, a) {
		return nil, &TransicionError{De: cita.Estado, A: a}
	}
	cita.Estado = a
	s.registrarCambio(cita, a, motivo, usuario)
	actualizarSlotKey(cita)
	if err := s.store.Citas.Update(ctx, cita); err != nil {
		return nil, traducirDuplicado(err)
	}
	return s.store.Citas.GetByID(ctx, cita.ID)
}

// Confirmar moves a programada or reprogramada cita to CONFIRMADA.
// A reprogramada cita reclaims its slot here, so the conflict check
// runs again.
func (s *Service) Confirmar(ctx context.Context, id, usuario string) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cita.Estado == models.CitaReprogramada {
		if err := s.verificarDisponibilidad(ctx, cita.MedicoID, cita.FechaCita, cita.HoraCita, cita.ID); err != nil {
			return nil, err
		}
	}
	return s.cambiarEstado(ctx, cita, models.CitaConfirmada, "Cita confirmada", usuario)
}

// Cancelar releases the slot when the cancellation rule allows it.
func (s *Service) Cancelar(ctx context.Context, id string, in CancelarInput) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !SePuedeCancelar(cita, s.ahora()) {
		return nil, ErrNoCancelable
	}
	motivo := in.Motivo
	if motivo == "" {
		motivo = "Cita cancelada"
	}
	cita.Estado = models.CitaCancelada
	s.registrarCambio(cita, models.CitaCancelada, motivo, in.Usuario)
	actualizarSlotKey(cita)
	if err := s.store.Citas.Update(ctx, cita); err != nil {
		return nil, err
	}
	return s.store.Citas.GetByID(ctx, id)
}

// Reprogramar moves a programada or confirmada cita to a new slot and
// leaves it in REPROGRAMADA, which holds no slot until confirmed.
func (s *Service) Reprogramar(ctx context.Context, id string, in ReprogramarInput) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !puedeTransicionar(cita.Estado, models.CitaReprogramada) {
		return nil, &TransicionError{De: cita.Estado, A: models.CitaReprogramada}
	}

	fecha, err := parseFecha(in.NuevaFecha)
	if err != nil {
		return nil, err
	}
	medico, err := s.store.Medicos.GetByID(ctx, cita.MedicoID)
	if err != nil {
		return nil, fmt.Errorf("médico: %w", err)
	}
	if err := s.validarSlot(medico, fecha, in.NuevaHora, cita.DuracionMinutos); err != nil {
		return nil, err
	}
	if fecha.Before(horarios.InicioDelDia(s.ahora())) {
		return nil, newValidationError("la nueva fecha de la cita no puede ser pasada")
	}
	if err := s.verificarDisponibilidad(ctx, cita.MedicoID, fecha, in.NuevaHora, cita.ID); err != nil {
		return nil, err
	}

	motivo := in.Motivo
	if motivo == "" {
		motivo = fmt.Sprintf("Reprogramada para %s %s", in.NuevaFecha, in.NuevaHora)
	}
	cita.FechaCita = fecha
	cita.HoraCita = in.NuevaHora
	return s.cambiarEstado(ctx, cita, models.CitaReprogramada, motivo, in.Usuario)
}

// Atender marks the start of the visit. Calling it on a visit already
// in progress is a no-op.
func (s *Service) Atender(ctx context.Context, id, usuario string) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cita.Estado == models.CitaEnAtencion {
		return cita, nil
	}
	return s.cambiarEstado(ctx, cita, models.CitaEnAtencion, "Atención iniciada", usuario)
}

// Completar closes the visit, stamping the attention time and the
// clinical outcome.
func (s *Service) Completar(ctx context.Context, id string, in CompletarInput) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !puedeTransicionar(cita.Estado, models.CitaAtendida) {
		return nil, &TransicionError{De: cita.Estado, A: models.CitaAtendida}
	}
	atendida := s.ahora()
	cita.FechaAtencion = &atendida
	cita.Resultados = in.Resultados
	return s.cambiarEstado(ctx, cita, models.CitaAtendida, "Atención completada", in.Usuario)
}

// NoAsistio records that the patient did not show up.
func (s *Service) NoAsistio(ctx context.Context, id, usuario string) (*models.Cita, error) {
	cita, err := s.store.Citas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cambiarEstado(ctx, cita, models.CitaNoAsistio, "El paciente no asistió", usuario)
}

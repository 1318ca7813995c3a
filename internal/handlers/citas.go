package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/citas"
	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/utils"
)

// CitaHandler handles appointment requests through the lifecycle
// service.
type CitaHandler struct {
	svc *citas.Service
}

// NewCitaHandler creates a new CitaHandler.
func NewCitaHandler(svc *citas.Service) *CitaHandler {
	return &CitaHandler{svc: svc}
}

// CreateCita handles POST /citas.
func (h *CitaHandler) CreateCita(c *gin.Context) {
	var req citas.CrearCitaInput
	if !utils.BindAndValidate(c, &req) {
		return
	}
	cita, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Cita programada exitosamente", cita)
}

// ListCitas handles GET /citas with its filters and pagination.
func (h *CitaHandler) ListCitas(c *gin.Context) {
	filtro := repository.CitaFilter{
		PacienteID:     c.Query("paciente"),
		MedicoID:       c.Query("medico"),
		EspecialidadID: c.Query("especialidad"),
		Estado:         models.EstadoCita(c.Query("estado")),
	}
	var ok bool
	if filtro.Fecha, ok = fechaQuery(c, "fecha"); !ok {
		return
	}
	if filtro.FechaDesde, ok = fechaQuery(c, "desde"); !ok {
		return
	}
	if filtro.FechaHasta, ok = fechaQuery(c, "hasta"); !ok {
		return
	}

	pagina, porPagina := paginacionQuery(c)
	lista, pag, err := h.svc.Listar(c.Request.Context(), citas.ListarParams{
		Filtro:    filtro,
		Pagina:    pagina,
		PorPagina: porPagina,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessPage(c, "Citas obtenidas", lista, pag)
}

// GetCitasHoy handles GET /citas/hoy.
func (h *CitaHandler) GetCitasHoy(c *gin.Context) {
	resumen, err := h.svc.Hoy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Citas de hoy obtenidas", resumen)
}

// BuscarCitas handles GET /citas/search?q=.
func (h *CitaHandler) BuscarCitas(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.BadRequest(c, "El parámetro q es obligatorio")
		return
	}
	pagina, porPagina := paginacionQuery(c)
	lista, pag, err := h.svc.Buscar(c.Request.Context(), q, citas.ListarParams{
		Pagina:    pagina,
		PorPagina: porPagina,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessPage(c, "Resultados de búsqueda obtenidos", lista, pag)
}

// GetCita handles GET /citas/:id.
func (h *CitaHandler) GetCita(c *gin.Context) {
	cita, err := h.svc.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Cita obtenida", cita)
}

// UpdateCita handles PUT /citas/:id.
func (h *CitaHandler) UpdateCita(c *gin.Context) {
	var req citas.ActualizarCitaInput
	if !utils.BindAndValidate(c, &req) {
		return
	}
	cita, err := h.svc.Actualizar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Cita actualizada exitosamente", cita)
}

// DeleteCita handles DELETE /citas/:id.
func (h *CitaHandler) DeleteCita(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Cita eliminada exitosamente", nil)
}

// ConfirmarCita handles PATCH /citas/:id/confirmar.
func (h *CitaHandler) ConfirmarCita(c *gin.Context) {
	cita, err := h.svc.Confirmar(c.Request.Context(), c.Param("id"), c.Query("usuario"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Cita confirmada exitosamente", cita)
}

// CancelarCita handles PATCH /citas/:id/cancelar.
func (h *CitaHandler) CancelarCita(c *gin.Context) {
	var req citas.CancelarInput
	if c.Request.ContentLength > 0 && !utils.BindAndValidate(c, &req) {
		return
	}
	cita, err := h.svc.Cancelar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Cita cancelada exitosamente", cita)
}

// ReprogramarCita handles PATCH /citas/:id/reprogramar.
func (h *CitaHandler) ReprogramarCita(c *gin.Context) {
	var req citas.ReprogramarInput
	if !utils.BindAndValidate(c, &req) {
		return
	}
	cita, err := h.svc.Reprogramar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Cita reprogramada exitosamente", cita)
}

// AtenderCita handles PATCH /citas/:id/atender.
func (h *CitaHandler) AtenderCita(c *gin.Context) {
	cita, err := h.svc.Atender(c.Request.Context(), c.Param("id"), c.Query("usuario"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Atención iniciada", cita)
}

// CompletarCita handles PATCH /citas/:id/completar.
func (h *CitaHandler) CompletarCita(c *gin.Context) {
	var req citas.CompletarInput
	if c.Request.ContentLength > 0 && !utils.BindAndValidate(c, &req) {
		return
	}
	cita, err := h.svc.Completar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Atención completada exitosamente", cita)
}

// NoAsistioCita handles PATCH /citas/:id/no-asistio.
func (h *CitaHandler) NoAsistioCita(c *gin.Context) {
	cita, err := h.svc.NoAsistio(c.Request.Context(), c.Param("id"), c.Query("usuario"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Inasistencia registrada", cita)
}

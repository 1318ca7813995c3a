package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/horarios"
	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/utils"
)

// EspecialidadHandler handles specialty requests.
type EspecialidadHandler struct {
	store *repository.Store
}

// NewEspecialidadHandler creates a new EspecialidadHandler.
func NewEspecialidadHandler(store *repository.Store) *EspecialidadHandler {
	return &EspecialidadHandler{store: store}
}

// CreateEspecialidadRequest is the creation schema.
type CreateEspecialidadRequest struct {
	Nombre                   string                `json:"nombre" binding:"required,max=100"`
	Descripcion              string                `json:"descripcion" binding:"required,max=500"`
	Codigo                   string                `json:"codigo" binding:"required,min=2,max=6"`
	DuracionConsultaMinutos  int                   `json:"duracionConsultaMinutos" binding:"omitempty,min=10,max=120"`
	Precio                   float64               `json:"precio" binding:"min=0"`
	RequierePreparacion      bool                  `json:"requierePreparacion"`
	InstruccionesPreparacion string                `json:"instruccionesPreparacion" binding:"max=1000"`
	HorarioAtencion          models.HorarioSemanal `json:"horarioAtencion"`
	Prioridad                int                   `json:"prioridad" binding:"omitempty,min=1,max=5"`
}

// UpdateEspecialidadRequest is the partial-update schema.
type UpdateEspecialidadRequest struct {
	Nombre                   *string                `json:"nombre" binding:"omitempty,max=100"`
	Descripcion              *string                `json:"descripcion" binding:"omitempty,max=500"`
	DuracionConsultaMinutos  *int                   `json:"duracionConsultaMinutos" binding:"omitempty,min=10,max=120"`
	Precio                   *float64               `json:"precio" binding:"omitempty,min=0"`
	RequierePreparacion      *bool                  `json:"requierePreparacion"`
	InstruccionesPreparacion *string                `json:"instruccionesPreparacion" binding:"omitempty,max=1000"`
	HorarioAtencion          *models.HorarioSemanal `json:"horarioAtencion"`
	Prioridad                *int                   `json:"prioridad" binding:"omitempty,min=1,max=5"`
	Activo                   *bool                  `json:"activo"`
}

// ListEspecialidades handles GET /especialidades.
func (h *EspecialidadHandler) ListEspecialidades(c *gin.Context) {
	activo, ok := activoQuery(c)
	if !ok {
		return
	}
	lista, err := h.store.Especialidades.List(c.Request.Context(), repository.EspecialidadFilter{
		Activo: activo,
		Texto:  c.Query("buscar"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Especialidades obtenidas", lista)
}

// SearchEspecialidades handles GET /especialidades/search?q=.
func (h *EspecialidadHandler) SearchEspecialidades(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.BadRequest(c, "El parámetro q es obligatorio")
		return
	}
	lista, err := h.store.Especialidades.List(c.Request.Context(), repository.EspecialidadFilter{Texto: q})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Resultados de búsqueda obtenidos", lista)
}

// GetEspecialidad handles GET /especialidades/:id.
func (h *EspecialidadHandler) GetEspecialidad(c *gin.Context) {
	esp, err := h.store.Especialidades.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Especialidad obtenida", esp)
}

// CreateEspecialidad handles POST /especialidades.
func (h *EspecialidadHandler) CreateEspecialidad(c *gin.Context) {
	var req CreateEspecialidadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	esp := models.Especialidad{
		Nombre:                   req.Nombre,
		Descripcion:              req.Descripcion,
		Codigo:                   req.Codigo,
		DuracionConsultaMinutos:  req.DuracionConsultaMinutos,
		Precio:                   req.Precio,
		RequierePreparacion:      req.RequierePreparacion,
		InstruccionesPreparacion: req.InstruccionesPreparacion,
		HorarioAtencion:          req.HorarioAtencion,
		Prioridad:                req.Prioridad,
		Activo:                   true,
	}
	if esp.DuracionConsultaMinutos == 0 {
		esp.DuracionConsultaMinutos = horarios.DuracionSlotDefecto
	}
	if esp.Prioridad == 0 {
		esp.Prioridad = 1
	}
	if esp.HorarioAtencion == nil {
		esp.HorarioAtencion = models.HorarioSemanalDefecto()
	}
	esp.Normalize()

	if err := h.store.Especialidades.Create(c.Request.Context(), &esp); err != nil {
		if err == repository.ErrDuplicate {
			utils.BadRequest(c, "Ya existe una especialidad con ese nombre o código")
			return
		}
		respondError(c, err)
		return
	}
	utils.Created(c, "Especialidad creada exitosamente", esp)
}

// UpdateEspecialidad handles PUT /especialidades/:id.
func (h *EspecialidadHandler) UpdateEspecialidad(c *gin.Context) {
	var req UpdateEspecialidadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	esp, err := h.store.Especialidades.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Nombre != nil {
		esp.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		esp.Descripcion = *req.Descripcion
	}
	if req.DuracionConsultaMinutos != nil {
		esp.DuracionConsultaMinutos = *req.DuracionConsultaMinutos
	}
	if req.Precio != nil {
		esp.Precio = *req.Precio
	}
	if req.RequierePreparacion != nil {
		esp.RequierePreparacion = *req.RequierePreparacion
	}
	if req.InstruccionesPreparacion != nil {
		esp.InstruccionesPreparacion = *req.InstruccionesPreparacion
	}
	if req.HorarioAtencion != nil {
		esp.HorarioAtencion = *req.HorarioAtencion
	}
	if req.Prioridad != nil {
		esp.Prioridad = *req.Prioridad
	}
	if req.Activo != nil {
		esp.Activo = *req.Activo
	}
	esp.Normalize()

	if err := h.store.Especialidades.Update(ctx, esp); err != nil {
		if err == repository.ErrDuplicate {
			utils.BadRequest(c, "Ya existe una especialidad con ese nombre o código")
			return
		}
		respondError(c, err)
		return
	}
	utils.Success(c, "Especialidad actualizada exitosamente", esp)
}

// DeleteEspecialidad handles DELETE /especialidades/:id. The record is
// deactivated, never removed, and only when no active doctor offers it.
func (h *EspecialidadHandler) DeleteEspecialidad(c *gin.Context) {
	ctx := c.Request.Context()
	esp, err := h.store.Especialidades.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	medicos, err := h.store.Medicos.CountPorEspecialidad(ctx, esp.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if medicos > 0 {
		utils.BadRequest(c, "No se puede desactivar: hay médicos activos asignados a esta especialidad")
		return
	}

	hoy := time.Now()
	pendientes, err := h.store.Citas.Count(ctx, repository.CitaFilter{
		EspecialidadID: esp.ID,
		Estados:        []models.EstadoCita{models.CitaProgramada, models.CitaConfirmada, models.CitaEnAtencion, models.CitaReprogramada},
		FechaDesde:     &hoy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if pendientes > 0 {
		utils.BadRequest(c, "No se puede desactivar: la especialidad tiene citas pendientes")
		return
	}

	esp.Activo = false
	if err := h.store.Especialidades.Update(ctx, esp); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Especialidad desactivada exitosamente", esp)
}

// GetMedicosDeEspecialidad handles GET /especialidades/:id/medicos.
func (h *EspecialidadHandler) GetMedicosDeEspecialidad(c *gin.Context) {
	ctx := c.Request.Context()
	esp, err := h.store.Especialidades.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	activo := true
	medicos, err := h.store.Medicos.List(ctx, repository.MedicoFilter{
		EspecialidadID: esp.ID,
		Activo:         &activo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Médicos de la especialidad obtenidos", medicos)
}

// GetHorariosDisponibles handles GET /especialidades/:id/horarios-disponibles.
// It returns the specialty's bookable slots for a date, independent of
// any particular doctor's agenda.
func (h *EspecialidadHandler) GetHorariosDisponibles(c *gin.Context) {
	esp, err := h.store.Especialidades.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	fecha, ok := fechaQuery(c, "fecha")
	if !ok {
		return
	}
	if fecha == nil {
		manana := time.Now().AddDate(0, 0, 1)
		fecha = &manana
	}

	slots := horarios.SlotsDisponibles(esp.HorarioAtencion, *fecha, esp.DuracionConsultaMinutos)
	if slots == nil {
		slots = []string{}
	}
	utils.Success(c, "Horarios disponibles obtenidos", gin.H{
		"especialidad": esp.Nombre,
		"fecha":        fecha.Format("2006-01-02"),
		"horarios":     slots,
	})
}

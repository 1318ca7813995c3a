package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/horarios"
	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/utils"
)

// MedicoHandler handles doctor requests.
type MedicoHandler struct {
	store *repository.Store
}

// NewMedicoHandler creates a new MedicoHandler.
func NewMedicoHandler(store *repository.Store) *MedicoHandler {
	return &MedicoHandler{store: store}
}

// CreateMedicoRequest is the creation schema. EspecialidadIDs must
// reference existing active specialties.
type CreateMedicoRequest struct {
	Nombres          string                `json:"nombres" binding:"required,max=100"`
	Apellidos        string                `json:"apellidos" binding:"required,max=100"`
	DNI              string                `json:"dni" binding:"required,len=8,numeric"`
	ColegioMedico    string                `json:"colegioMedico" binding:"required,min=4,max=6,numeric"`
	Email            string                `json:"email" binding:"required,email"`
	Telefono         string                `json:"telefono" binding:"required,len=9,numeric"`
	ExperienciaAnios int                   `json:"experienciaAnios" binding:"min=0,max=50"`
	EspecialidadIDs  []string              `json:"especialidadIds" binding:"required,min=1"`
	HorarioLaboral   models.HorarioSemanal `json:"horarioLaboral"`
	Tarifa           models.Tarifa         `json:"tarifa"`
}

// UpdateMedicoRequest is the partial-update schema.
type UpdateMedicoRequest struct {
	Nombres          *string                `json:"nombres" binding:"omitempty,max=100"`
	Apellidos        *string                `json:"apellidos" binding:"omitempty,max=100"`
	Email            *string                `json:"email" binding:"omitempty,email"`
	Telefono         *string                `json:"telefono" binding:"omitempty,len=9,numeric"`
	ExperienciaAnios *int                   `json:"experienciaAnios" binding:"omitempty,min=0,max=50"`
	EspecialidadIDs  []string               `json:"especialidadIds" binding:"omitempty,min=1"`
	HorarioLaboral   *models.HorarioSemanal `json:"horarioLaboral"`
	Tarifa           *models.Tarifa         `json:"tarifa"`
	Estado           *models.EstadoMedico   `json:"estado" binding:"omitempty,oneof=ACTIVO INACTIVO VACACIONES LICENCIA"`
}

// resolverEspecialidades loads and checks the referenced specialties.
func (h *MedicoHandler) resolverEspecialidades(c *gin.Context, ids []string) ([]models.Especialidad, bool) {
	ctx := c.Request.Context()
	especialidades := make([]models.Especialidad, 0, len(ids))
	for _, id := range ids {
		esp, err := h.store.Especialidades.GetByID(ctx, id)
		if err != nil {
			utils.BadRequest(c, "La especialidad "+id+" no existe")
			return nil, false
		}
		if !esp.Activo {
			utils.BadRequest(c, "La especialidad "+esp.Nombre+" no está activa")
			return nil, false
		}
		especialidades = append(especialidades, *esp)
	}
	return especialidades, true
}

// ListMedicos handles GET /medicos.
func (h *MedicoHandler) ListMedicos(c *gin.Context) {
	activo, ok := activoQuery(c)
	if !ok {
		return
	}
	pagina, porPagina := paginacionQuery(c)
	filtro := repository.MedicoFilter{
		EspecialidadID: c.Query("especialidad"),
		Estado:         models.EstadoMedico(c.Query("estado")),
		Activo:         activo,
		Texto:          c.Query("buscar"),
	}

	ctx := c.Request.Context()
	total, err := h.store.Medicos.Count(ctx, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	filtro.Skip = (pagina - 1) * porPagina
	filtro.Limit = porPagina
	medicos, err := h.store.Medicos.List(ctx, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessPage(c, "Médicos obtenidos", medicos, gin.H{
		"total":     total,
		"pagina":    pagina,
		"porPagina": porPagina,
	})
}

// SearchMedicos handles GET /medicos/search?q=.
func (h *MedicoHandler) SearchMedicos(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.BadRequest(c, "El parámetro q es obligatorio")
		return
	}
	pagina, porPagina := paginacionQuery(c)
	medicos, err := h.store.Medicos.List(c.Request.Context(), repository.MedicoFilter{
		Texto: q,
		Skip:  (pagina - 1) * porPagina,
		Limit: porPagina,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Resultados de búsqueda obtenidos", medicos)
}

// GetMedico handles GET /medicos/:id.
func (h *MedicoHandler) GetMedico(c *gin.Context) {
	medico, err := h.store.Medicos.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Médico obtenido", medico)
}

// CreateMedico handles POST /medicos.
func (h *MedicoHandler) CreateMedico(c *gin.Context) {
	var req CreateMedicoRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	especialidades, ok := h.resolverEspecialidades(c, req.EspecialidadIDs)
	if !ok {
		return
	}

	medico := models.Medico{
		Nombres:          req.Nombres,
		Apellidos:        req.Apellidos,
		DNI:              req.DNI,
		ColegioMedico:    req.ColegioMedico,
		Email:            req.Email,
		Telefono:         req.Telefono,
		ExperienciaAnios: req.ExperienciaAnios,
		Especialidades:   especialidades,
		HorarioLaboral:   req.HorarioLaboral,
		Tarifa:           req.Tarifa,
		Estado:           models.MedicoActivo,
		Activo:           true,
	}
	if medico.HorarioLaboral == nil {
		medico.HorarioLaboral = models.HorarioSemanalDefecto()
	}
	medico.Normalize()

	if err := h.store.Medicos.Create(c.Request.Context(), &medico); err != nil {
		if err == repository.ErrDuplicate {
			utils.BadRequest(c, "Ya existe un médico con ese DNI, colegio médico o email")
			return
		}
		respondError(c, err)
		return
	}
	utils.Created(c, "Médico registrado exitosamente", medico)
}

// UpdateMedico handles PUT /medicos/:id.
func (h *MedicoHandler) UpdateMedico(c *gin.Context) {
	var req UpdateMedicoRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	medico, err := h.store.Medicos.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Nombres != nil {
		medico.Nombres = *req.Nombres
	}
	if req.Apellidos != nil {
		medico.Apellidos = *req.Apellidos
	}
	if req.Email != nil {
		medico.Email = *req.Email
	}
	if req.Telefono != nil {
		medico.Telefono = *req.Telefono
	}
	if req.ExperienciaAnios != nil {
		medico.ExperienciaAnios = *req.ExperienciaAnios
	}
	if len(req.EspecialidadIDs) > 0 {
		especialidades, ok := h.resolverEspecialidades(c, req.EspecialidadIDs)
		if !ok {
			return
		}
		medico.Especialidades = especialidades
	}
	if req.HorarioLaboral != nil {
		medico.HorarioLaboral = *req.HorarioLaboral
	}
	if req.Tarifa != nil {
		medico.Tarifa = *req.Tarifa
	}
	if req.Estado != nil {
		medico.Estado = *req.Estado
	}
	medico.Normalize()

	if err := h.store.Medicos.Update(ctx, medico); err != nil {
		if err == repository.ErrDuplicate {
			utils.BadRequest(c, "Ya existe un médico con ese DNI, colegio médico o email")
			return
		}
		respondError(c, err)
		return
	}
	utils.Success(c, "Médico actualizado exitosamente", medico)
}

// DeleteMedico handles DELETE /medicos/:id. Deactivation is blocked
// while the doctor has pending appointments.
func (h *MedicoHandler) DeleteMedico(c *gin.Context) {
	ctx := c.Request.Context()
	medico, err := h.store.Medicos.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	hoy := time.Now()
	pendientes, err := h.store.Citas.Count(ctx, repository.CitaFilter{
		MedicoID:   medico.ID,
		Estados:    []models.EstadoCita{models.CitaProgramada, models.CitaConfirmada, models.CitaEnAtencion, models.CitaReprogramada},
		FechaDesde: &hoy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if pendientes > 0 {
		utils.BadRequest(c, "No se puede desactivar: el médico tiene citas pendientes")
		return
	}

	medico.Activo = false
	medico.Estado = models.MedicoInactivo
	if err := h.store.Medicos.Update(ctx, medico); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Médico desactivado exitosamente", medico)
}

// GetDisponibilidad handles GET /medicos/:id/disponibilidad. It
// subtracts the booked slots of the day from the working-hours slots.
func (h *MedicoHandler) GetDisponibilidad(c *gin.Context) {
	ctx := c.Request.Context()
	medico, err := h.store.Medicos.GetByID(ctx, c.Param("id"))
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

	if !horarios.MedicoDisponible(medico, *fecha) {
		utils.Success(c, "El médico no atiende en la fecha solicitada", gin.H{
			"fecha":      fecha.Format("2006-01-02"),
			"disponible": false,
			"horarios":   []string{},
		})
		return
	}

	duracion := horarios.DuracionSlotDefecto
	if len(medico.Especialidades) > 0 && medico.Especialidades[0].DuracionConsultaMinutos > 0 {
		duracion = medico.Especialidades[0].DuracionConsultaMinutos
	}
	slots := horarios.SlotsDisponibles(medico.HorarioLaboral, *fecha, duracion)

	ocupadas, err := h.store.Citas.List(ctx, repository.CitaFilter{
		MedicoID: medico.ID,
		Estados:  []models.EstadoCita{models.CitaProgramada, models.CitaConfirmada, models.CitaEnAtencion},
		Fecha:    fecha,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	tomadas := make(map[string]bool, len(ocupadas))
	for _, cita := range ocupadas {
		tomadas[cita.HoraCita] = true
	}

	libres := make([]string, 0, len(slots))
	for _, s := range slots {
		if !tomadas[s] {
			libres = append(libres, s)
		}
	}
	utils.Success(c, "Disponibilidad obtenida", gin.H{
		"fecha":      fecha.Format("2006-01-02"),
		"disponible": len(libres) > 0,
		"horarios":   libres,
	})
}

// GetAgenda handles GET /medicos/:id/agenda, the doctor's appointments
// for one day.
func (h *MedicoHandler) GetAgenda(c *gin.Context) {
	ctx := c.Request.Context()
	medico, err := h.store.Medicos.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	fecha, ok := fechaQuery(c, "fecha")
	if !ok {
		return
	}
	if fecha == nil {
		hoy := time.Now()
		fecha = &hoy
	}

	agenda, err := h.store.Citas.List(ctx, repository.CitaFilter{MedicoID: medico.ID, Fecha: fecha})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Agenda obtenida", gin.H{
		"medico": medico.NombreCompleto(),
		"fecha":  fecha.Format("2006-01-02"),
		"citas":  agenda,
	})
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/utils"
)

// PacienteHandler handles patient requests.
type PacienteHandler struct {
	store *repository.Store
}

// NewPacienteHandler creates a new PacienteHandler.
func NewPacienteHandler(store *repository.Store) *PacienteHandler {
	return &PacienteHandler{store: store}
}

// CreatePacienteRequest is the creation schema. FechaNacimiento
// travels as "YYYY-MM-DD".
type CreatePacienteRequest struct {
	Nombres            string                    `json:"nombres" binding:"required,max=100"`
	Apellidos          string                    `json:"apellidos" binding:"required,max=100"`
	DNI                string                    `json:"dni" binding:"required,len=8,numeric"`
	FechaNacimiento    string                    `json:"fechaNacimiento" binding:"required,datetime=2006-01-02"`
	Genero             string                    `json:"genero" binding:"required,oneof=M F Otro"`
	Telefono           string                    `json:"telefono" binding:"required,len=9,numeric"`
	Email              string                    `json:"email" binding:"required,email"`
	Direccion          models.Direccion          `json:"direccion"`
	ContactoEmergencia models.ContactoEmergencia `json:"contactoEmergencia"`
	SeguroMedico       models.SeguroMedico       `json:"seguroMedico"`
}

// UpdatePacienteRequest is the partial-update schema.
type UpdatePacienteRequest struct {
	Nombres            *string                    `json:"nombres" binding:"omitempty,max=100"`
	Apellidos          *string                    `json:"apellidos" binding:"omitempty,max=100"`
	Telefono           *string                    `json:"telefono" binding:"omitempty,len=9,numeric"`
	Email              *string                    `json:"email" binding:"omitempty,email"`
	Direccion          *models.Direccion          `json:"direccion"`
	ContactoEmergencia *models.ContactoEmergencia `json:"contactoEmergencia"`
	SeguroMedico       *models.SeguroMedico       `json:"seguroMedico"`
}

// ListPacientes handles GET /pacientes.
func (h *PacienteHandler) ListPacientes(c *gin.Context) {
	activo, ok := activoQuery(c)
	if !ok {
		return
	}
	pagina, porPagina := paginacionQuery(c)
	filtro := repository.PacienteFilter{
		Activo:   activo,
		Distrito: c.Query("distrito"),
		Texto:    c.Query("buscar"),
	}

	ctx := c.Request.Context()
	total, err := h.store.Pacientes.Count(ctx, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	filtro.Skip = (pagina - 1) * porPagina
	filtro.Limit = porPagina
	pacientes, err := h.store.Pacientes.List(ctx, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessPage(c, "Pacientes obtenidos", pacientes, gin.H{
		"total":     total,
		"pagina":    pagina,
		"porPagina": porPagina,
	})
}

// SearchPacientes handles GET /pacientes/search?q=.
func (h *PacienteHandler) SearchPacientes(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		utils.BadRequest(c, "El parámetro q es obligatorio")
		return
	}
	pagina, porPagina := paginacionQuery(c)
	pacientes, err := h.store.Pacientes.List(c.Request.Context(), repository.PacienteFilter{
		Texto: q,
		Skip:  (pagina - 1) * porPagina,
		Limit: porPagina,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Resultados de búsqueda obtenidos", pacientes)
}

// GetPaciente handles GET /pacientes/:id.
func (h *PacienteHandler) GetPaciente(c *gin.Context) {
	paciente, err := h.store.Pacientes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Paciente obtenido", gin.H{
		"paciente": paciente,
		"edad":     paciente.Edad(),
	})
}

// CreatePaciente handles POST /pacientes.
func (h *PacienteHandler) CreatePaciente(c *gin.Context) {
	var req CreatePacienteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	nacimiento, err := time.ParseInLocation("2006-01-02", req.FechaNacimiento, time.Local)
	if err != nil || !nacimiento.Before(time.Now()) {
		utils.BadRequest(c, "La fecha de nacimiento debe ser una fecha pasada")
		return
	}

	paciente := models.Paciente{
		Nombres:            req.Nombres,
		Apellidos:          req.Apellidos,
		DNI:                req.DNI,
		FechaNacimiento:    nacimiento,
		Genero:             req.Genero,
		Telefono:           req.Telefono,
		Email:              req.Email,
		Direccion:          req.Direccion,
		ContactoEmergencia: req.ContactoEmergencia,
		SeguroMedico:       req.SeguroMedico,
		Activo:             true,
	}
	paciente.Normalize()

	if err := h.store.Pacientes.Create(c.Request.Context(), &paciente); err != nil {
		if err == repository.ErrDuplicate {
			utils.BadRequest(c, "Ya existe un paciente con ese DNI o email")
			return
		}
		respondError(c, err)
		return
	}
	utils.Created(c, "Paciente registrado exitosamente", paciente)
}

// UpdatePaciente handles PUT /pacientes/:id.
func (h *PacienteHandler) UpdatePaciente(c *gin.Context) {
	var req UpdatePacienteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	paciente, err := h.store.Pacientes.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Nombres != nil {
		paciente.Nombres = *req.Nombres
	}
	if req.Apellidos != nil {
		paciente.Apellidos = *req.Apellidos
	}
	if req.Telefono != nil {
		paciente.Telefono = *req.Telefono
	}
	if req.Email != nil {
		paciente.Email = *req.Email
	}
	if req.Direccion != nil {
		paciente.Direccion = *req.Direccion
	}
	if req.ContactoEmergencia != nil {
		paciente.ContactoEmergencia = *req.ContactoEmergencia
	}
	if req.SeguroMedico != nil {
		paciente.SeguroMedico = *req.SeguroMedico
	}
	paciente.Normalize()

	if err := h.store.Pacientes.Update(ctx, paciente); err != nil {
		if err == repository.ErrDuplicate {
			utils.BadRequest(c, "Ya existe un paciente con ese DNI o email")
			return
		}
		respondError(c, err)
		return
	}
	utils.Success(c, "Paciente actualizado exitosamente", paciente)
}

// DeletePaciente handles DELETE /pacientes/:id. Deactivation is
// blocked while the patient has pending appointments.
func (h *PacienteHandler) DeletePaciente(c *gin.Context) {
	ctx := c.Request.Context()
	paciente, err := h.store.Pacientes.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	hoy := time.Now()
	pendientes, err := h.store.Citas.Count(ctx, repository.CitaFilter{
		PacienteID: paciente.ID,
		Estados:    []models.EstadoCita{models.CitaProgramada, models.CitaConfirmada, models.CitaEnAtencion, models.CitaReprogramada},
		FechaDesde: &hoy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if pendientes > 0 {
		utils.BadRequest(c, "No se puede desactivar: el paciente tiene citas pendientes")
		return
	}

	paciente.Activo = false
	if err := h.store.Pacientes.Update(ctx, paciente); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Paciente desactivado exitosamente", paciente)
}

// GetCitasDePaciente handles GET /pacientes/:id/citas.
func (h *PacienteHandler) GetCitasDePaciente(c *gin.Context) {
	ctx := c.Request.Context()
	paciente, err := h.store.Pacientes.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	filtro := repository.CitaFilter{
		PacienteID: paciente.ID,
		Estado:     models.EstadoCita(c.Query("estado")),
	}
	lista, err := h.store.Citas.List(ctx, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Citas del paciente obtenidas", lista)
}

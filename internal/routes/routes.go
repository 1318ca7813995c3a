package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/citas"
	"github.com/genomike/citasmedicas/internal/handlers"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/utils"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, store *repository.Store, svc *citas.Service) {
	especialidadHandler := handlers.NewEspecialidadHandler(store)
	medicoHandler := handlers.NewMedicoHandler(store)
	pacienteHandler := handlers.NewPacienteHandler(store)
	citaHandler := handlers.NewCitaHandler(svc)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		utils.Success(c, "Sistema de citas médicas en funcionamiento", gin.H{
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	especialidades := api.Group("/especialidades")
	{
		especialidades.GET("", especialidadHandler.ListEspecialidades)
		especialidades.POST("", especialidadHandler.CreateEspecialidad)
		especialidades.GET("/search", especialidadHandler.SearchEspecialidades)
		especialidades.GET("/:id", especialidadHandler.GetEspecialidad)
		especialidades.PUT("/:id", especialidadHandler.UpdateEspecialidad)
		especialidades.DELETE("/:id", especialidadHandler.DeleteEspecialidad)
		especialidades.GET("/:id/medicos", especialidadHandler.GetMedicosDeEspecialidad)
		especialidades.GET("/:id/horarios-disponibles", especialidadHandler.GetHorariosDisponibles)
	}

	medicos := api.Group("/medicos")
	{
		medicos.GET("", medicoHandler.ListMedicos)
		medicos.POST("", medicoHandler.CreateMedico)
		medicos.GET("/search", medicoHandler.SearchMedicos)
		medicos.GET("/:id", medicoHandler.GetMedico)
		medicos.PUT("/:id", medicoHandler.UpdateMedico)
		medicos.DELETE("/:id", medicoHandler.DeleteMedico)
		medicos.GET("/:id/disponibilidad", medicoHandler.GetDisponibilidad)
		medicos.GET("/:id/agenda", medicoHandler.GetAgenda)
	}

	pacientes := api.Group("/pacientes")
	{
		pacientes.GET("", pacienteHandler.ListPacientes)
		pacientes.POST("", pacienteHandler.CreatePaciente)
		pacientes.GET("/search", pacienteHandler.SearchPacientes)
		pacientes.GET("/:id", pacienteHandler.GetPaciente)
		pacientes.PUT("/:id", pacienteHandler.UpdatePaciente)
		pacientes.DELETE("/:id", pacienteHandler.DeletePaciente)
		pacientes.GET("/:id/citas", pacienteHandler.GetCitasDePaciente)
	}

	rutas := api.Group("/citas")
	{
		rutas.GET("", citaHandler.ListCitas)
		rutas.POST("", citaHandler.CreateCita)
		rutas.GET("/hoy", citaHandler.GetCitasHoy)
		rutas.GET("/search", citaHandler.BuscarCitas)
		rutas.GET("/:id", citaHandler.GetCita)
		rutas.PUT("/:id", citaHandler.UpdateCita)
		rutas.DELETE("/:id", citaHandler.DeleteCita)
		rutas.PATCH("/:id/confirmar", citaHandler.ConfirmarCita)
		rutas.PATCH("/:id/cancelar", citaHandler.CancelarCita)
		rutas.PATCH("/:id/reprogramar", citaHandler.ReprogramarCita)
		rutas.PATCH("/:id/atender", citaHandler.AtenderCita)
		rutas.PATCH("/:id/completar", citaHandler.CompletarCita)
		rutas.PATCH("/:id/no-asistio", citaHandler.NoAsistioCita)
	}
}

// Package handlers exposes the HTTP surface: CRUD for specialties,
// doctors and patients, and the appointment lifecycle endpoints.
package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/citas"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/utils"
)

// respondError maps domain errors onto the HTTP status the API
// promises: 404 for missing records, 400 for validation, conflicts
// and disallowed transitions, 500 otherwise.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFound(c, "Registro no encontrado")
	case errors.Is(err, citas.ErrSlotConflict):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, citas.ErrNoCancelable) || errors.Is(err, citas.ErrNoEliminable):
		utils.BadRequest(c, err.Error())
	default:
		if ve, ok := citas.EsValidacion(err); ok {
			utils.BadRequest(c, "Datos de entrada inválidos", ve.Errores...)
			return
		}
		if te, ok := citas.EsTransicion(err); ok {
			utils.BadRequest(c, te.Error())
			return
		}
		utils.InternalServerError(c, "Error interno del servidor")
	}
}

// paginacionQuery reads ?pagina= and ?porPagina= with the 1/20 defaults.
func paginacionQuery(c *gin.Context) (int, int) {
	pagina, err := strconv.Atoi(c.DefaultQuery("pagina", "1"))
	if err != nil || pagina < 1 {
		pagina = 1
	}
	porPagina, err := strconv.Atoi(c.DefaultQuery("porPagina", "20"))
	if err != nil || porPagina < 1 || porPagina > 100 {
		porPagina = 20
	}
	return pagina, porPagina
}

// fechaQuery reads an optional "YYYY-MM-DD" query parameter.
func fechaQuery(c *gin.Context, nombre string) (*time.Time, bool) {
	valor := c.Query(nombre)
	if valor == "" {
		return nil, true
	}
	f, err := time.ParseInLocation("2006-01-02", valor, time.Local)
	if err != nil {
		utils.BadRequest(c, "El parámetro "+nombre+" debe tener el formato YYYY-MM-DD")
		return nil, false
	}
	return &f, true
}

// activoQuery reads an optional ?activo=true|false filter.
func activoQuery(c *gin.Context) (*bool, bool) {
	valor := c.Query("activo")
	if valor == "" {
		return nil, true
	}
	activo, err := strconv.ParseBool(valor)
	if err != nil {
		utils.BadRequest(c, "El parámetro activo debe ser true o false")
		return nil, false
	}
	return &activo, true
}

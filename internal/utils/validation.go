package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FormatValidationErrors turns validator errors into one message per
// offending field.
func FormatValidationErrors(err error) []string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	mensajes := make([]string, 0, len(errs))
	for _, e := range errs {
		mensajes = append(mensajes, mensajeDeCampo(e))
	}
	return mensajes
}

func mensajeDeCampo(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("el campo %s es obligatorio", e.Field())
	case "email":
		return fmt.Sprintf("el campo %s debe ser un email válido", e.Field())
	case "len":
		return fmt.Sprintf("el campo %s debe tener %s caracteres", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("el campo %s supera el máximo de %s", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("el campo %s no alcanza el mínimo de %s", e.Field(), e.Param())
	case "numeric":
		return fmt.Sprintf("el campo %s debe ser numérico", e.Field())
	case "oneof":
		return fmt.Sprintf("el campo %s debe ser uno de: %s", e.Field(), e.Param())
	case "datetime":
		return fmt.Sprintf("el campo %s debe tener el formato %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("el campo %s no es válido (%s)", e.Field(), e.Tag())
	}
}

// BindAndValidate binds the JSON request body to obj. Gin runs the
// binding tags during ShouldBindJSON; on failure it answers 400 with
// the itemized field errors and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			BadRequest(c, "Datos de entrada inválidos", FormatValidationErrors(err)...)
		} else {
			BadRequest(c, "Cuerpo de la petición inválido", err.Error())
		}
		return false
	}
	return true
}

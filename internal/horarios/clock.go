// Package horarios holds the pure schedule arithmetic: weekday
// resolution, slot generation from "HH:MM" windows, and availability
// resolution over weekly templates. All times are local and naive;
// timezone handling is out of scope.
package horarios

import (
	"fmt"
	"time"

	"github.com/genomike/citasmedicas/internal/models"
)

// DiaSemana returns the Spanish day name used as weekly-template key.
func DiaSemana(fecha time.Time) string {
	return models.DiasSemana[int(fecha.Weekday())]
}

// ParseHora converts "HH:MM" to minutes since midnight. The format is
// strict: exactly two zero-padded digits on each side, nothing else.
// Loose inputs like "9:00" would never match a generated slot, so they
// are rejected up front.
func ParseHora(hora string) (int, error) {
	if len(hora) != 5 || hora[2] != ':' {
		return 0, fmt.Errorf("hora %q inválida, se espera HH:MM", hora)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if hora[i] < '0' || hora[i] > '9' {
			return 0, fmt.Errorf("hora %q inválida, se espera HH:MM", hora)
		}
	}
	hh := int(hora[0]-'0')*10 + int(hora[1]-'0')
	mm := int(hora[3]-'0')*10 + int(hora[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("hora %q fuera de rango", hora)
	}
	return hh*60 + mm, nil
}

// FormatHora converts minutes since midnight back to "HH:MM".
func FormatHora(minutos int) string {
	return fmt.Sprintf("%02d:%02d", minutos/60, minutos%60)
}

// GenerarSlots produces the ordered slot starts inside [inicio, fin)
// with the given step. Every slot fits entirely before fin; the
// sequence is empty when inicio >= fin, the step is not positive, or
// either bound is malformed.
func GenerarSlots(inicio, fin string, pasoMinutos int) []string {
	if pasoMinutos <= 0 {
		return nil
	}
	ini, err := ParseHora(inicio)
	if err != nil {
		return nil
	}
	end, err := ParseHora(fin)
	if err != nil {
		return nil
	}

	var slots []string
	for m := ini; m+pasoMinutos <= end; m += pasoMinutos {
		slots = append(slots, FormatHora(m))
	}
	return slots
}

// CombinarFechaHora attaches an "HH:MM" clock time to a calendar date.
func CombinarFechaHora(fecha time.Time, hora string) time.Time {
	minutos, err := ParseHora(hora)
	if err != nil {
		minutos = 0
	}
	return time.Date(fecha.Year(), fecha.Month(), fecha.Day(), minutos/60, minutos%60, 0, 0, fecha.Location())
}

// InicioDelDia truncates a timestamp to local midnight.
func InicioDelDia(fecha time.Time) time.Time {
	return time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, fecha.Location())
}

// FinDelDia returns the last instant of the day.
func FinDelDia(fecha time.Time) time.Time {
	return time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), fecha.Location())
}

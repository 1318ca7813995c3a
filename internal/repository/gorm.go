package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/genomike/citasmedicas/internal/horarios"
	"github.com/genomike/citasmedicas/internal/models"
)

// NewGormStore binds the repositories to a MySQL-backed gorm handle.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Especialidades: &gormEspecialidades{db: db},
		Medicos:        &gormMedicos{db: db},
		Pacientes:      &gormPacientes{db: db},
		Citas:          &gormCitas{db: db},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormEspecialidades struct {
	db *gorm.DB
}

func (r *gormEspecialidades) GetByID(ctx context.Context, id string) (*models.Especialidad, error) {
	var e models.Especialidad
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *gormEspecialidades) List(ctx context.Context, f EspecialidadFilter) ([]models.Especialidad, error) {
	q := r.db.WithContext(ctx).Model(&models.Especialidad{})
	if f.Activo != nil {
		q = q.Where("activo = ?", *f.Activo)
	}
	if f.Texto != "" {
		like := "%" + f.Texto + "%"
		q = q.Where("nombre LIKE ? OR descripcion LIKE ? OR codigo LIKE ?", like, like, like)
	}
	var out []models.Especialidad
	err := q.Order("prioridad desc, nombre asc").Find(&out).Error
	return out, translate(err)
}

func (r *gormEspecialidades) Create(ctx context.Context, e *models.Especialidad) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *gormEspecialidades) Update(ctx context.Context, e *models.Especialidad) error {
	return translate(r.db.WithContext(ctx).Save(e).Error)
}

type gormMedicos struct {
	db *gorm.DB
}

func (r *gormMedicos) GetByID(ctx context.Context, id string) (*models.Medico, error) {
	var m models.Medico
	err := r.db.WithContext(ctx).Preload("Especialidades").First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *gormMedicos) medicoQuery(ctx context.Context, f MedicoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Medico{})
	if f.EspecialidadID != "" {
		q = q.Joins("JOIN medico_especialidades me ON me.medico_id = medicos.id").
			Where("me.especialidad_id = ?", f.EspecialidadID)
	}
	if f.Estado != "" {
		q = q.Where("medicos.estado = ?", f.Estado)
	}
	if f.Activo != nil {
		q = q.Where("medicos.activo = ?", *f.Activo)
	}
	if f.Texto != "" {
		like := "%" + f.Texto + "%"
		q = q.Where("medicos.nombres LIKE ? OR medicos.apellidos LIKE ? OR medicos.dni LIKE ? OR medicos.colegio_medico LIKE ?",
			like, like, like, like)
	}
	return q
}

func (r *gormMedicos) List(ctx context.Context, f MedicoFilter) ([]models.Medico, error) {
	q := r.medicoQuery(ctx, f).Preload("Especialidades").Order("medicos.apellidos asc, medicos.nombres asc")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Medico
	err := q.Find(&out).Error
	return out, translate(err)
}

func (r *gormMedicos) Count(ctx context.Context, f MedicoFilter) (int64, error) {
	var n int64
	err := r.medicoQuery(ctx, f).Count(&n).Error
	return n, translate(err)
}

func (r *gormMedicos) Create(ctx context.Context, m *models.Medico) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *gormMedicos) Update(ctx context.Context, m *models.Medico) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Omit("Especialidades").Save(m).Error; err != nil {
		return translate(err)
	}
	return translate(tx.Model(m).Association("Especialidades").Replace(m.Especialidades))
}

func (r *gormMedicos) CountPorEspecialidad(ctx context.Context, especialidadID string) (int64, error) {
	activo := true
	return r.Count(ctx, MedicoFilter{EspecialidadID: especialidadID, Activo: &activo})
}

type gormPacientes struct {
	db *gorm.DB
}

func (r *gormPacientes) GetByID(ctx context.Context, id string) (*models.Paciente, error) {
	var p models.Paciente
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPacientes) pacienteQuery(ctx context.Context, f PacienteFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Paciente{})
	if f.Activo != nil {
		q = q.Where("activo = ?", *f.Activo)
	}
	if f.Distrito != "" {
		q = q.Where("direccion_distrito = ?", f.Distrito)
	}
	if f.Texto != "" {
		like := "%" + f.Texto + "%"
		q = q.Where("nombres LIKE ? OR apellidos LIKE ? OR dni LIKE ? OR email LIKE ?", like, like, like, like)
	}
	return q
}

func (r *gormPacientes) List(ctx context.Context, f PacienteFilter) ([]models.Paciente, error) {
	q := r.pacienteQuery(ctx, f).Order("apellidos asc, nombres asc")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Paciente
	err := q.Find(&out).Error
	return out, translate(err)
}

func (r *gormPacientes) Count(ctx context.Context, f PacienteFilter) (int64, error) {
	var n int64
	err := r.pacienteQuery(ctx, f).Count(&n).Error
	return n, translate(err)
}

func (r *gormPacientes) Create(ctx context.Context, p *models.Paciente) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormPacientes) Update(ctx context.Context, p *models.Paciente) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

type gormCitas struct {
	db *gorm.DB
}

func (r *gormCitas) GetByID(ctx context.Context, id string) (*models.Cita, error) {
	var c models.Cita
	err := r.db.WithContext(ctx).
		Preload("Paciente").Preload("Medico").Preload("Especialidad").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormCitas) citaQuery(ctx context.Context, f CitaFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Cita{})
	if f.PacienteID != "" {
		q = q.Where("citas.paciente_id = ?", f.PacienteID)
	}
	if f.MedicoID != "" {
		q = q.Where("citas.medico_id = ?", f.MedicoID)
	}
	if f.EspecialidadID != "" {
		q = q.Where("citas.especialidad_id = ?", f.EspecialidadID)
	}
	if f.Estado != "" {
		q = q.Where("citas.estado = ?", f.Estado)
	}
	if len(f.Estados) > 0 {
		q = q.Where("citas.estado IN ?", f.Estados)
	}
	if f.Fecha != nil {
		q = q.Where("citas.fecha_cita BETWEEN ? AND ?", horarios.InicioDelDia(*f.Fecha), horarios.FinDelDia(*f.Fecha))
	} else {
		if f.FechaDesde != nil {
			q = q.Where("citas.fecha_cita >= ?", *f.FechaDesde)
		}
		if f.FechaHasta != nil {
			q = q.Where("citas.fecha_cita <= ?", *f.FechaHasta)
		}
	}
	if f.Texto != "" {
		like := "%" + f.Texto + "%"
		q = q.Joins("LEFT JOIN pacientes ON pacientes.id = citas.paciente_id").
			Joins("LEFT JOIN medicos ON medicos.id = citas.medico_id").
			Where("citas.motivo_consulta LIKE ? OR citas.observaciones LIKE ?"+
				" OR pacientes.nombres LIKE ? OR pacientes.apellidos LIKE ? OR pacientes.dni LIKE ?"+
				" OR medicos.nombres LIKE ? OR medicos.apellidos LIKE ?",
				like, like, like, like, like, like, like)
	}
	return q
}

func (r *gormCitas) List(ctx context.Context, f CitaFilter) ([]models.Cita, error) {
	q := r.citaQuery(ctx, f).
		Preload("Paciente").Preload("Medico").Preload("Especialidad").
		Order("citas.fecha_cita asc, citas.hora_cita asc")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Cita
	err := q.Find(&out).Error
	return out, translate(err)
}

func (r *gormCitas) Count(ctx context.Context, f CitaFilter) (int64, error) {
	var n int64
	err := r.citaQuery(ctx, f).Count(&n).Error
	return n, translate(err)
}

func (r *gormCitas) Create(ctx context.Context, c *models.Cita) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormCitas) Update(ctx context.Context, c *models.Cita) error {
	err := r.db.WithContext(ctx).
		Omit("Paciente", "Medico", "Especialidad").
		Save(c).Error
	return translate(err)
}

func (r *gormCitas) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Cita{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCitas) FindSlot(ctx context.Context, medicoID string, fecha time.Time, hora string, excludeID string) (*models.Cita, error) {
	q := r.db.WithContext(ctx).
		Where("medico_id = ? AND hora_cita = ?", medicoID, hora).
		Where("fecha_cita BETWEEN ? AND ?", horarios.InicioDelDia(fecha), horarios.FinDelDia(fecha)).
		Where("estado IN ?", []models.EstadoCita{models.CitaProgramada, models.CitaConfirmada, models.CitaEnAtencion})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var c models.Cita
	if err := q.First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

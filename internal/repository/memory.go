package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/genomike/citasmedicas/internal/horarios"
	"github.com/genomike/citasmedicas/internal/models"
)

// MemoryStore is the in-memory storage binding, used when no MySQL
// instance is configured and in tests. It is an explicit object owned
// by the process wiring; there is no package-level state. Slot
// uniqueness is enforced atomically under the store mutex via the
// slots map, mirroring the partial unique index of the MySQL binding.
type MemoryStore struct {
	mu             sync.RWMutex
	especialidades map[string]models.Especialidad
	medicos        map[string]models.Medico
	pacientes      map[string]models.Paciente
	citas          map[string]models.Cita
	slots          map[string]string // slot key -> cita ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.especialidades = make(map[string]models.Especialidad)
	s.medicos = make(map[string]models.Medico)
	s.pacientes = make(map[string]models.Paciente)
	s.citas = make(map[string]models.Cita)
	s.slots = make(map[string]string)
}

// Reset drops all data. Only explicit callers (seeding, tests) may
// clear the store.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Store exposes the repository views over this memory store.
func (s *MemoryStore) Store() *Store {
	return &Store{
		Especialidades: &memEspecialidades{s: s},
		Medicos:        &memMedicos{s: s},
		Pacientes:      &memPacientes{s: s},
		Citas:          &memCitas{s: s},
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func contieneTexto(texto string, campos ...string) bool {
	q := strings.ToLower(texto)
	for _, c := range campos {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

func paginar[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

type memEspecialidades struct {
	s *MemoryStore
}

func (r *memEspecialidades) GetByID(_ context.Context, id string) (*models.Especialidad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.especialidades[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *memEspecialidades) List(_ context.Context, f EspecialidadFilter) ([]models.Especialidad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Especialidad
	for _, e := range r.s.especialidades {
		if f.Activo != nil && e.Activo != *f.Activo {
			continue
		}
		if f.Texto != "" && !contieneTexto(f.Texto, e.Nombre, e.Descripcion, e.Codigo) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Prioridad != out[j].Prioridad {
			return out[i].Prioridad > out[j].Prioridad
		}
		return out[i].Nombre < out[j].Nombre
	})
	return out, nil
}

func (r *memEspecialidades) duplicada(e *models.Especialidad) bool {
	for _, otra := range r.s.especialidades {
		if otra.ID == e.ID {
			continue
		}
		if strings.EqualFold(otra.Nombre, e.Nombre) || strings.EqualFold(otra.Codigo, e.Codigo) {
			return true
		}
	}
	return false
}

func (r *memEspecialidades) Create(_ context.Context, e *models.Especialidad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&e.ID)
	if r.duplicada(e) {
		return ErrDuplicate
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.especialidades[e.ID] = *e
	return nil
}

func (r *memEspecialidades) Update(_ context.Context, e *models.Especialidad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.especialidades[e.ID]; !ok {
		return ErrNotFound
	}
	if r.duplicada(e) {
		return ErrDuplicate
	}
	e.UpdatedAt = time.Now()
	r.s.especialidades[e.ID] = *e
	return nil
}

type memMedicos struct {
	s *MemoryStore
}

func (r *memMedicos) GetByID(_ context.Context, id string) (*models.Medico, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.medicos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memMedicos) filtrar(f MedicoFilter) []models.Medico {
	var out []models.Medico
	for _, m := range r.s.medicos {
		if f.EspecialidadID != "" && !m.TieneEspecialidad(f.EspecialidadID) {
			continue
		}
		if f.Estado != "" && m.Estado != f.Estado {
			continue
		}
		if f.Activo != nil && m.Activo != *f.Activo {
			continue
		}
		if f.Texto != "" && !contieneTexto(f.Texto, m.Nombres, m.Apellidos, m.DNI, m.ColegioMedico) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apellidos != out[j].Apellidos {
			return out[i].Apellidos < out[j].Apellidos
		}
		return out[i].Nombres < out[j].Nombres
	})
	return out
}

func (r *memMedicos) List(_ context.Context, f MedicoFilter) ([]models.Medico, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Skip, f.Limit), nil
}

func (r *memMedicos) Count(_ context.Context, f MedicoFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filtrar(f))), nil
}

func (r *memMedicos) duplicado(m *models.Medico) bool {
	for _, otro := range r.s.medicos {
		if otro.ID == m.ID {
			continue
		}
		if otro.DNI == m.DNI || otro.ColegioMedico == m.ColegioMedico || strings.EqualFold(otro.Email, m.Email) {
			return true
		}
	}
	return false
}

func (r *memMedicos) Create(_ context.Context, m *models.Medico) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&m.ID)
	if r.duplicado(m) {
		return ErrDuplicate
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.s.medicos[m.ID] = *m
	return nil
}

func (r *memMedicos) Update(_ context.Context, m *models.Medico) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.medicos[m.ID]; !ok {
		return ErrNotFound
	}
	if r.duplicado(m) {
		return ErrDuplicate
	}
	m.UpdatedAt = time.Now()
	r.s.medicos[m.ID] = *m
	return nil
}

func (r *memMedicos) CountPorEspecialidad(ctx context.Context, especialidadID string) (int64, error) {
	activo := true
	return r.Count(ctx, MedicoFilter{EspecialidadID: especialidadID, Activo: &activo})
}

type memPacientes struct {
	s *MemoryStore
}

func (r *memPacientes) GetByID(_ context.Context, id string) (*models.Paciente, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.pacientes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memPacientes) filtrar(f PacienteFilter) []models.Paciente {
	var out []models.Paciente
	for _, p := range r.s.pacientes {
		if f.Activo != nil && p.Activo != *f.Activo {
			continue
		}
		if f.Distrito != "" && !strings.EqualFold(p.Direccion.Distrito, f.Distrito) {
			continue
		}
		if f.Texto != "" && !contieneTexto(f.Texto, p.Nombres, p.Apellidos, p.DNI, p.Email) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apellidos != out[j].Apellidos {
			return out[i].Apellidos < out[j].Apellidos
		}
		return out[i].Nombres < out[j].Nombres
	})
	return out
}

func (r *memPacientes) List(_ context.Context, f PacienteFilter) ([]models.Paciente, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Skip, f.Limit), nil
}

func (r *memPacientes) Count(_ context.Context, f PacienteFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filtrar(f))), nil
}

func (r *memPacientes) duplicado(p *models.Paciente) bool {
	for _, otro := range r.s.pacientes {
		if otro.ID == p.ID {
			continue
		}
		if otro.DNI == p.DNI || strings.EqualFold(otro.Email, p.Email) {
			return true
		}
	}
	return false
}

func (r *memPacientes) Create(_ context.Context, p *models.Paciente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&p.ID)
	if r.duplicado(p) {
		return ErrDuplicate
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.pacientes[p.ID] = *p
	return nil
}

func (r *memPacientes) Update(_ context.Context, p *models.Paciente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pacientes[p.ID]; !ok {
		return ErrNotFound
	}
	if r.duplicado(p) {
		return ErrDuplicate
	}
	p.UpdatedAt = time.Now()
	r.s.pacientes[p.ID] = *p
	return nil
}

type memCitas struct {
	s *MemoryStore
}

// poblar attaches copies of the referenced entities, the memory
// counterpart of the MySQL binding's preloads.
func (r *memCitas) poblar(c models.Cita) models.Cita {
	if p, ok := r.s.pacientes[c.PacienteID]; ok {
		p := p
		c.Paciente = &p
	}
	if m, ok := r.s.medicos[c.MedicoID]; ok {
		m := m
		c.Medico = &m
	}
	if e, ok := r.s.especialidades[c.EspecialidadID]; ok {
		e := e
		c.Especialidad = &e
	}
	return c
}

func (r *memCitas) GetByID(_ context.Context, id string) (*models.Cita, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.citas[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = r.poblar(c)
	return &c, nil
}

func mismoDia(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (r *memCitas) coincide(c models.Cita, f CitaFilter) bool {
	if f.PacienteID != "" && c.PacienteID != f.PacienteID {
		return false
	}
	if f.MedicoID != "" && c.MedicoID != f.MedicoID {
		return false
	}
	if f.EspecialidadID != "" && c.EspecialidadID != f.EspecialidadID {
		return false
	}
	if f.Estado != "" && c.Estado != f.Estado {
		return false
	}
	if len(f.Estados) > 0 {
		ok := false
		for _, e := range f.Estados {
			if c.Estado == e {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Fecha != nil {
		if !mismoDia(c.FechaCita, *f.Fecha) {
			return false
		}
	} else {
		if f.FechaDesde != nil && c.FechaCita.Before(horarios.InicioDelDia(*f.FechaDesde)) {
			return false
		}
		if f.FechaHasta != nil && c.FechaCita.After(horarios.FinDelDia(*f.FechaHasta)) {
			return false
		}
	}
	if f.Texto != "" {
		campos := []string{c.MotivoConsulta, c.Observaciones}
		if p, ok := r.s.pacientes[c.PacienteID]; ok {
			campos = append(campos, p.Nombres, p.Apellidos, p.DNI)
		}
		if m, ok := r.s.medicos[c.MedicoID]; ok {
			campos = append(campos, m.Nombres, m.Apellidos)
		}
		if !contieneTexto(f.Texto, campos...) {
			return false
		}
	}
	return true
}

func (r *memCitas) filtrar(f CitaFilter) []models.Cita {
	var out []models.Cita
	for _, c := range r.s.citas {
		if r.coincide(c, f) {
			out = append(out, r.poblar(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !mismoDia(out[i].FechaCita, out[j].FechaCita) {
			return out[i].FechaCita.Before(out[j].FechaCita)
		}
		return out[i].HoraCita < out[j].HoraCita
	})
	return out
}

func (r *memCitas) List(_ context.Context, f CitaFilter) ([]models.Cita, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Skip, f.Limit), nil
}

func (r *memCitas) Count(_ context.Context, f CitaFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filtrar(f))), nil
}

// reservarSlot claims the cita's slot key under the store lock,
// releasing whatever key the cita held before. Returns ErrDuplicate
// when another cita already holds the new key.
func (r *memCitas) reservarSlot(c *models.Cita, previa *models.Cita) error {
	if previa != nil && previa.SlotKey != nil {
		if dueno, ok := r.s.slots[*previa.SlotKey]; ok && dueno == c.ID {
			delete(r.s.slots, *previa.SlotKey)
		}
	}
	if c.SlotKey == nil {
		return nil
	}
	if dueno, ok := r.s.slots[*c.SlotKey]; ok && dueno != c.ID {
		// restore the old claim before failing
		if previa != nil && previa.SlotKey != nil {
			r.s.slots[*previa.SlotKey] = c.ID
		}
		return ErrDuplicate
	}
	r.s.slots[*c.SlotKey] = c.ID
	return nil
}

func (r *memCitas) Create(_ context.Context, c *models.Cita) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&c.ID)
	if err := r.reservarSlot(c, nil); err != nil {
		return err
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	guardada := *c
	guardada.Paciente, guardada.Medico, guardada.Especialidad = nil, nil, nil
	r.s.citas[c.ID] = guardada
	return nil
}

func (r *memCitas) Update(_ context.Context, c *models.Cita) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	previa, ok := r.s.citas[c.ID]
	if !ok {
		return ErrNotFound
	}
	if err := r.reservarSlot(c, &previa); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	guardada := *c
	guardada.Paciente, guardada.Medico, guardada.Especialidad = nil, nil, nil
	r.s.citas[c.ID] = guardada
	return nil
}

func (r *memCitas) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.citas[id]
	if !ok {
		return ErrNotFound
	}
	if c.SlotKey != nil {
		delete(r.s.slots, *c.SlotKey)
	}
	delete(r.s.citas, id)
	return nil
}

func (r *memCitas) FindSlot(_ context.Context, medicoID string, fecha time.Time, hora string, excludeID string) (*models.Cita, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.citas {
		if c.ID == excludeID {
			continue
		}
		if c.MedicoID == medicoID && c.HoraCita == hora && mismoDia(c.FechaCita, fecha) && c.Estado.OcupaSlot() {
			c = r.poblar(c)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

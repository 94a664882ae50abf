// Package apptest provee un almacén en memoria con transacciones de
// snapshot/rollback para probar los casos de uso sin PostgreSQL. Reproduce la
// semántica relevante del adaptador real: orden FIFO de candidatos, colisión
// de códigos por dueño y todo-o-nada en cada Run.
package apptest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/application/ports"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/allocation"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

type data struct {
	lots        map[string]*entity.Lot
	movements   []*entity.MovementEntry
	recipes     map[string]*entity.Recipe
	ingredients map[string][]*entity.RecipeIngredient
	yields      map[string][]*entity.RecipeProduct
	products    map[string]*entity.Product
	materials   map[string]*entity.Material
	runs        map[string]*entity.ProductionRun
	transitions map[string]*entity.StageTransition
	releases    map[string]*entity.OutboundRelease
}

func newData() *data {
	return &data{
		lots:        map[string]*entity.Lot{},
		recipes:     map[string]*entity.Recipe{},
		ingredients: map[string][]*entity.RecipeIngredient{},
		yields:      map[string][]*entity.RecipeProduct{},
		products:    map[string]*entity.Product{},
		materials:   map[string]*entity.Material{},
		runs:        map[string]*entity.ProductionRun{},
		transitions: map[string]*entity.StageTransition{},
		releases:    map[string]*entity.OutboundRelease{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for id, l := range d.lots {
		cp := *l
		c.lots[id] = &cp
	}
	c.movements = make([]*entity.MovementEntry, len(d.movements))
	for i, m := range d.movements {
		cp := *m
		c.movements[i] = &cp
	}
	for id, r := range d.recipes {
		cp := *r
		c.recipes[id] = &cp
	}
	for id, list := range d.ingredients {
		c.ingredients[id] = append([]*entity.RecipeIngredient(nil), list...)
	}
	for id, list := range d.yields {
		c.yields[id] = append([]*entity.RecipeProduct(nil), list...)
	}
	for id, p := range d.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, m := range d.materials {
		cp := *m
		c.materials[id] = &cp
	}
	for id, r := range d.runs {
		cp := *r
		c.runs[id] = &cp
	}
	for id, t := range d.transitions {
		cp := *t
		c.transitions[id] = &cp
	}
	for id, r := range d.releases {
		cp := *r
		c.releases[id] = &cp
	}
	return c
}

// Store almacén en memoria compartido por repos y TxRunner.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// Repos repositorios de lectura sobre el estado vivo (fuera de transacción).
func (s *Store) Repos() ports.Repos {
	return reposOver(s.d)
}

// Run ejecuta fn contra un clon del estado; solo en éxito el clon reemplaza
// al estado vivo. Cualquier error descarta todas las escrituras. El puntero
// del estado vivo no cambia, así los repos de lectura construidos antes de la
// transacción siguen viendo el estado confirmado.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scratch := s.d.clone()
	if err := fn(reposOver(scratch)); err != nil {
		return err
	}
	*s.d = *scratch
	return nil
}

var _ ports.TxRunner = (*Store)(nil)

// ── Seeding ──────────────────────────────────────────────────────────────────

// SeedMaterial registra una materia prima.
func (s *Store) SeedMaterial(m *entity.Material) {
	s.d.materials[m.ID] = m
}

// SeedProduct registra un producto terminado.
func (s *Store) SeedProduct(p *entity.Product) {
	s.d.products[p.ID] = p
}

// SeedRecipe registra una receta con sus ingredientes y rendimientos.
func (s *Store) SeedRecipe(r *entity.Recipe, ingredients []*entity.RecipeIngredient, yields []*entity.RecipeProduct) {
	s.d.recipes[r.ID] = r
	s.d.ingredients[r.ID] = ingredients
	s.d.yields[r.ID] = yields
}

// SeedLot inserta un lote con su asiento ENTRADA correspondiente, manteniendo
// el invariante libro==saldo desde el arranque del escenario.
func (s *Store) SeedLot(lot *entity.Lot) *entity.Lot {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if lot.State == "" {
		lot.State = entity.LotStateAvailable
	}
	s.d.lots[lot.ID] = lot
	if lot.Quantity.GreaterThan(decimal.Zero) {
		s.d.movements = append(s.d.movements, &entity.MovementEntry{
			ID:        uuid.New().String(),
			LotID:     lot.ID,
			Quantity:  lot.Quantity,
			Kind:      entity.MovementKindEntrada,
			Reason:    "carga inicial",
			Date:      lot.IngressAt,
			CreatedAt: lot.IngressAt,
		})
	}
	return lot
}

// Lot devuelve el lote vivo por id (para asserts).
func (s *Store) Lot(id string) *entity.Lot {
	return s.d.lots[id]
}

// Movements devuelve el libro completo (para asserts).
func (s *Store) Movements() []*entity.MovementEntry {
	return s.d.movements
}

// ── Repositorios ─────────────────────────────────────────────────────────────

func reposOver(d *data) ports.Repos {
	return ports.Repos{
		Lots:        &lotRepo{d: d},
		Movements:   &movementRepo{d: d},
		Recipes:     &recipeRepo{d: d},
		Products:    &productRepo{d: d},
		Materials:   &materialRepo{d: d},
		Runs:        &runRepo{d: d},
		Transitions: &transitionRepo{d: d},
		Releases:    &releaseRepo{d: d},
	}
}

type lotRepo struct{ d *data }

var _ repository.LotRepository = (*lotRepo)(nil)

func (r *lotRepo) GetByID(id string) (*entity.Lot, error) {
	l, ok := r.d.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *lotRepo) GetByIDForUpdate(id string) (*entity.Lot, error) {
	return r.GetByID(id)
}

func (r *lotRepo) ListCandidates(ownerType, ownerID string, asOf time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.d.lots {
		if l.OwnerType == ownerType && l.OwnerID == ownerID && l.IsCandidate(asOf) {
			cp := *l
			out = append(out, &cp)
		}
	}
	allocation.SortFIFO(out)
	return out, nil
}

func (r *lotRepo) ListCandidatesForUpdate(ownerType, ownerID string, asOf time.Time) ([]*entity.Lot, error) {
	return r.ListCandidates(ownerType, ownerID, asOf)
}

func (r *lotRepo) ListSellable(productID, stage string, asOf time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.d.lots {
		if l.OwnerType != entity.OwnerTypeProduct || l.OwnerID != productID {
			continue
		}
		if stage != "" && l.Stage != stage {
			continue
		}
		if l.IsSellable(asOf) {
			cp := *l
			out = append(out, &cp)
		}
	}
	allocation.SortFIFO(out)
	return out, nil
}

func (r *lotRepo) ListSellableForUpdate(productID, stage string, asOf time.Time) ([]*entity.Lot, error) {
	return r.ListSellable(productID, stage, asOf)
}

func (r *lotRepo) ListByOwner(ownerType, ownerID string, limit, offset int) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.d.lots {
		if l.OwnerType == ownerType && l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	allocation.SortFIFO(out)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *lotRepo) Create(lot *entity.Lot) error {
	for _, l := range r.d.lots {
		if l.OwnerType == lot.OwnerType && l.OwnerID == lot.OwnerID && l.Code == lot.Code {
			return &domain.DuplicateCodeError{OwnerID: lot.OwnerID, Code: lot.Code}
		}
	}
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	cp := *lot
	r.d.lots[lot.ID] = &cp
	return nil
}

func (r *lotRepo) Update(lot *entity.Lot) error {
	if _, ok := r.d.lots[lot.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *lot
	r.d.lots[lot.ID] = &cp
	return nil
}

func (r *lotRepo) FindByStageAndDay(productID, stage string, asOf time.Time) (*entity.Lot, error) {
	y, m, day := asOf.UTC().Date()
	var found *entity.Lot
	for _, l := range r.d.lots {
		if l.OwnerType != entity.OwnerTypeProduct || l.OwnerID != productID || l.Stage != stage {
			continue
		}
		if l.State == entity.LotStateInactive {
			continue
		}
		ly, lm, ld := l.IngressAt.UTC().Date()
		if ly == y && lm == m && ld == day {
			if found == nil || l.Code < found.Code {
				cp := *l
				found = &cp
			}
		}
	}
	return found, nil
}

type movementRepo struct{ d *data }

var _ repository.MovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(entry *entity.MovementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	cp := *entry
	r.d.movements = append(r.d.movements, &cp)
	return nil
}

func (r *movementRepo) List(filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, m := range r.d.movements {
		if filter.LotID != "" && m.LotID != filter.LotID {
			continue
		}
		if filter.OwnerID != "" {
			lot, ok := r.d.lots[m.LotID]
			if !ok || lot.OwnerID != filter.OwnerID {
				continue
			}
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		if filter.RefKind != "" && m.RefKind != filter.RefKind {
			continue
		}
		if filter.RefID != "" && m.RefID != filter.RefID {
			continue
		}
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *movementRepo) ListByLot(lotID string) ([]*entity.MovementEntry, error) {
	return r.List(repository.MovementFilter{LotID: lotID})
}

type recipeRepo struct{ d *data }

var _ repository.RecipeRepository = (*recipeRepo)(nil)

func (r *recipeRepo) GetByID(id string) (*entity.Recipe, error) {
	rec, ok := r.d.recipes[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *recipeRepo) ListIngredients(recipeID string) ([]*entity.RecipeIngredient, error) {
	return append([]*entity.RecipeIngredient(nil), r.d.ingredients[recipeID]...), nil
}

func (r *recipeRepo) ListProducts(recipeID string) ([]*entity.RecipeProduct, error) {
	return append([]*entity.RecipeProduct(nil), r.d.yields[recipeID]...), nil
}

type productRepo struct{ d *data }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.d.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type materialRepo struct{ d *data }

var _ repository.MaterialRepository = (*materialRepo)(nil)

func (r *materialRepo) GetByID(id string) (*entity.Material, error) {
	m, ok := r.d.materials[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

type runRepo struct{ d *data }

var _ repository.ProductionRunRepository = (*runRepo)(nil)

func (r *runRepo) Create(run *entity.ProductionRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	cp := *run
	r.d.runs[run.ID] = &cp
	return nil
}

func (r *runRepo) GetByID(id string) (*entity.ProductionRun, error) {
	run, ok := r.d.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

type transitionRepo struct{ d *data }

var _ repository.StageTransitionRepository = (*transitionRepo)(nil)

func (r *transitionRepo) Create(t *entity.StageTransition) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	cp := *t
	r.d.transitions[t.ID] = &cp
	return nil
}

type releaseRepo struct{ d *data }

var _ repository.OutboundReleaseRepository = (*releaseRepo)(nil)

func (r *releaseRepo) Create(rel *entity.OutboundRelease) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	cp := *rel
	r.d.releases[rel.ID] = &cp
	return nil
}

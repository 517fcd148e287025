package stock_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
	"github.com/tiendapro/storefront-api/internal/domain/repository"
)

// fakeStore estado compartido en memoria para los dobles de prueba: variantes,
// libro de movimientos y fallos inyectables.
type fakeStore struct {
	variants  map[string]*entity.Variant
	movements []*entity.StockMovement

	failCreate error // error a devolver en movRepo.Create
	conflicts  int   // cantidad de Run que fallarán con ErrConflict
	runs       int   // transacciones iniciadas
}

func newFakeStore(stocks map[string]int) *fakeStore {
	s := &fakeStore{variants: make(map[string]*entity.Variant)}
	for id, qty := range stocks {
		s.variants[id] = &entity.Variant{ID: id, Stock: qty}
	}
	return s
}

func (s *fakeStore) stockOf(variantID string) int {
	v, ok := s.variants[variantID]
	if !ok {
		return -1
	}
	return v.Stock
}

// fakeTxRunner simula la frontera transaccional: si fn falla, restaura el
// snapshot previo (rollback); si no, deja los cambios (commit).
type fakeTxRunner struct {
	store *fakeStore
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
) error) error {
	s := f.store
	s.runs++
	if s.conflicts > 0 {
		s.conflicts--
		return fmt.Errorf("%w: conflicto simulado", domain.ErrConflict)
	}

	snapshot := make(map[string]entity.Variant, len(s.variants))
	for id, v := range s.variants {
		snapshot[id] = *v
	}
	movCount := len(s.movements)

	err := fn(&fakeMovementRepo{store: s}, &fakeVariantRepo{store: s})
	if err != nil {
		for id := range s.variants {
			v := snapshot[id]
			s.variants[id] = &v
		}
		s.movements = s.movements[:movCount]
		return err
	}
	return nil
}

// fakeMovementRepo libro de movimientos en memoria.
type fakeMovementRepo struct {
	store *fakeStore
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	if r.store.failCreate != nil {
		return r.store.failCreate
	}
	copia := *movement
	r.store.movements = append(r.store.movements, &copia)
	return nil
}

func (r *fakeMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			copia := *m
			return &copia, nil
		}
	}
	return nil, domain.ErrNotFound
}

func matchesFilter(m *entity.StockMovement, f repository.MovementFilter) bool {
	if f.VariantID != "" && m.VariantID != f.VariantID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.ActorID != "" && m.CreatedBy != f.ActorID {
		return false
	}
	if f.DateFrom != nil && m.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

func (r *fakeMovementRepo) filtered(f repository.MovementFilter) []*entity.StockMovement {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if matchesFilter(m, f) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *fakeMovementRepo) List(_ context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, error) {
	all := r.filtered(filter)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeMovementRepo) Count(_ context.Context, filter repository.MovementFilter) (int, error) {
	return len(r.filtered(filter)), nil
}

func (r *fakeMovementRepo) SummaryByType(_ context.Context, filter repository.MovementFilter) ([]repository.TypeSummary, error) {
	byType := make(map[string]*repository.TypeSummary)
	for _, m := range r.filtered(filter) {
		s, ok := byType[m.Type]
		if !ok {
			s = &repository.TypeSummary{Type: m.Type}
			byType[m.Type] = s
		}
		s.Count++
		s.TotalQuantity += m.Quantity
	}
	var out []repository.TypeSummary
	for _, s := range byType {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// fakeVariantRepo Variant Store en memoria.
type fakeVariantRepo struct {
	store *fakeStore
}

func (r *fakeVariantRepo) GetStock(_ context.Context, variantID string) (*entity.Variant, error) {
	v, ok := r.store.variants[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copia := *v
	return &copia, nil
}

func (r *fakeVariantRepo) GetStockForUpdate(ctx context.Context, variantID string) (*entity.Variant, error) {
	return r.GetStock(ctx, variantID)
}

func (r *fakeVariantRepo) UpdateStock(_ context.Context, variantID string, newStock int) error {
	v, ok := r.store.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	v.Stock = newStock
	return nil
}

package materials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	materials map[int64]Material
	openByID  map[int64]int64
	nextID    int64
}

type memoryTx struct {
	repo    *memoryRepo
	applied map[int64]float64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{materials: make(map[int64]Material), openByID: make(map[int64]int64)}
}

func (r *memoryRepo) add(m Material) Material {
	r.nextID++
	m.ID = r.nextID
	r.materials[m.ID] = m
	return m
}

// WithTx mirrors database transaction semantics: adjustments are staged and
// only land when the callback succeeds.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, applied: make(map[int64]float64)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, delta := range tx.applied {
		m := r.materials[id]
		m.QuantityInStock += delta
		r.materials[id] = m
	}
	return nil
}

func (r *memoryRepo) Create(ctx context.Context, input CreateInput) (Material, error) {
	return r.add(Material{Name: input.Name, Unit: input.Unit, QuantityInStock: input.QuantityInStock, ReorderLevel: input.ReorderLevel}), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return Material{}, ErrNotFound
	}
	return m, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Material, error) {
	out := make([]Material, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryRepo) ListBelowReorder(ctx context.Context) ([]Material, error) {
	out := []Material{}
	for _, m := range r.materials {
		if m.QuantityInStock < m.ReorderLevel {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, input UpdateInput) (Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return Material{}, ErrNotFound
	}
	m.Name = input.Name
	m.Unit = input.Unit
	m.ReorderLevel = input.ReorderLevel
	r.materials[id] = m
	return m, nil
}

func (r *memoryRepo) CountOpenProcessing(ctx context.Context, materialID int64) (int64, error) {
	return r.openByID[materialID], nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.materials[id]; !ok {
		return ErrNotFound
	}
	delete(r.materials, id)
	return nil
}

func (tx *memoryTx) AdjustStock(ctx context.Context, materialID int64, delta float64) (Material, error) {
	m, ok := tx.repo.materials[materialID]
	if !ok {
		return Material{}, ErrNotFound
	}
	staged := m.QuantityInStock + tx.applied[materialID] + delta
	if staged < 0 {
		return Material{}, ErrInsufficientStock
	}
	tx.applied[materialID] += delta
	m.QuantityInStock = staged
	return m, nil
}

func TestConsumeGuardsStock(t *testing.T) {
	repo := newMemoryRepo()
	m := repo.add(Material{Name: "Cotton", Unit: "m", QuantityInStock: 10, ReorderLevel: 5})
	svc := NewService(repo, nil)
	ctx := context.Background()

	got, err := svc.Consume(ctx, m.ID, 7)
	require.NoError(t, err)
	require.InDelta(t, 3.0, got.QuantityInStock, 0.0001)

	low, err := svc.ListBelowReorder(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, m.ID, low[0].ID)

	_, err = svc.Consume(ctx, m.ID, 10)
	require.ErrorIs(t, err, ErrInsufficientStock)

	after, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.InDelta(t, 3.0, after.QuantityInStock, 0.0001)
}

func TestReceiveThenConsumeRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	m := repo.add(Material{Name: "Thread", Unit: "spool", QuantityInStock: 2, ReorderLevel: 1})
	svc := NewService(repo, nil)
	ctx := context.Background()

	got, err := svc.Receive(ctx, m.ID, 8)
	require.NoError(t, err)
	require.InDelta(t, 10.0, got.QuantityInStock, 0.0001)

	got, err = svc.Consume(ctx, m.ID, 8)
	require.NoError(t, err)
	require.InDelta(t, 2.0, got.QuantityInStock, 0.0001)
}

func TestConsumeBatchAllOrNothing(t *testing.T) {
	repo := newMemoryRepo()
	a := repo.add(Material{Name: "Cotton", Unit: "m", QuantityInStock: 10, ReorderLevel: 2})
	b := repo.add(Material{Name: "Silk", Unit: "m", QuantityInStock: 1, ReorderLevel: 2})
	svc := NewService(repo, nil)
	ctx := context.Background()

	err := svc.ConsumeBatch(ctx, []ConsumeItem{
		{MaterialID: a.ID, Quantity: 5},
		{MaterialID: b.ID, Quantity: 3},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	gotA, _ := svc.Get(ctx, a.ID)
	gotB, _ := svc.Get(ctx, b.ID)
	require.InDelta(t, 10.0, gotA.QuantityInStock, 0.0001)
	require.InDelta(t, 1.0, gotB.QuantityInStock, 0.0001)

	require.NoError(t, svc.ConsumeBatch(ctx, []ConsumeItem{
		{MaterialID: a.ID, Quantity: 5},
		{MaterialID: b.ID, Quantity: 1},
	}))
	gotA, _ = svc.Get(ctx, a.ID)
	gotB, _ = svc.Get(ctx, b.ID)
	require.InDelta(t, 5.0, gotA.QuantityInStock, 0.0001)
	require.InDelta(t, 0.0, gotB.QuantityInStock, 0.0001)
}

func TestReorderComparisonIsStrict(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(Material{Name: "AtLevel", Unit: "m", QuantityInStock: 5, ReorderLevel: 5})
	below := repo.add(Material{Name: "Below", Unit: "m", QuantityInStock: 4, ReorderLevel: 5})
	svc := NewService(repo, nil)

	low, err := svc.ListBelowReorder(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, below.ID, low[0].ID)
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	repo := newMemoryRepo()
	m := repo.add(Material{Name: "Cotton", Unit: "m", QuantityInStock: 10, ReorderLevel: 2})
	repo.openByID[m.ID] = 2
	svc := NewService(repo, nil)

	err := svc.Delete(context.Background(), m.ID)
	require.ErrorIs(t, err, ErrReferenced)

	repo.openByID[m.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), m.ID))
}

func TestValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "", Unit: "m"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Receive(ctx, 1, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Consume(ctx, 1, -2)
	require.ErrorIs(t, err, ErrValidation)

	err = svc.ConsumeBatch(ctx, nil)
	require.ErrorIs(t, err, ErrValidation)
}

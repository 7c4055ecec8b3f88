package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	processing map[int64]*ProcessingProduct
	finished   map[int64]*FinishedProduct
	codes      map[string]bool
	nextID     int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		processing: make(map[int64]*ProcessingProduct),
		finished:   make(map[int64]*FinishedProduct),
		codes:      make(map[string]bool),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) CreateProcessing(ctx context.Context, input CreateProcessingInput) (ProcessingProduct, error) {
	if r.codes[input.ProcessingCode] {
		return ProcessingProduct{}, ErrDuplicateCode
	}
	r.codes[input.ProcessingCode] = true
	r.nextID++
	p := &ProcessingProduct{
		ID:             r.nextID,
		MaterialID:     input.MaterialID,
		ProcessingCode: input.ProcessingCode,
		CuttingCost:    input.CuttingCost,
		EmbroideryCost: input.EmbroideryCost,
		PackagingCost:  input.PackagingCost,
		OtherCost:      input.OtherCost,
		StartDate:      input.StartDate,
		Status:         StatusActive,
	}
	r.processing[p.ID] = p
	return *p, nil
}

func (r *memoryRepo) GetProcessing(ctx context.Context, id int64) (ProcessingProduct, error) {
	p, ok := r.processing[id]
	if !ok {
		return ProcessingProduct{}, ErrNotFound
	}
	return *p, nil
}

func (r *memoryRepo) ListProcessing(ctx context.Context, status Status) ([]ProcessingProduct, error) {
	out := []ProcessingProduct{}
	for _, p := range r.processing {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Transition(ctx context.Context, id int64, to Status) (bool, error) {
	p, ok := r.processing[id]
	if !ok || p.Status != StatusActive {
		return false, nil
	}
	p.Status = to
	if to == StatusCompleted {
		now := time.Now()
		p.EndDate = &now
	}
	return true, nil
}

func (r *memoryRepo) GetStatus(ctx context.Context, id int64) (Status, error) {
	p, ok := r.processing[id]
	if !ok {
		return "", ErrNotFound
	}
	return p.Status, nil
}

func (r *memoryRepo) GetFinished(ctx context.Context, id int64) (FinishedProduct, error) {
	f, ok := r.finished[id]
	if !ok {
		return FinishedProduct{}, ErrNotFound
	}
	return *f, nil
}

func (r *memoryRepo) ListFinished(ctx context.Context) ([]FinishedProduct, error) {
	out := []FinishedProduct{}
	for _, f := range r.finished {
		out = append(out, *f)
	}
	return out, nil
}

func (tx *memoryTx) InsertFinished(ctx context.Context, input CreateFinishedInput) (int64, error) {
	if tx.repo.codes[input.FinishedCode] {
		return 0, ErrDuplicateCode
	}
	tx.repo.codes[input.FinishedCode] = true
	tx.repo.nextID++
	tx.repo.finished[tx.repo.nextID] = &FinishedProduct{
		ID:                    tx.repo.nextID,
		ProcessingProductID:   input.ProcessingProductID,
		FinishedCode:          input.FinishedCode,
		ProductType:           input.ProductType,
		Price:                 input.Price,
		ManpowerChargePerUnit: input.ManpowerChargePerUnit,
		Category:              input.Category,
		SubCategory:           input.SubCategory,
	}
	return tx.repo.nextID, nil
}

func (tx *memoryTx) InsertSizes(ctx context.Context, finishedID int64, sizes []SizeQuantity) error {
	tx.repo.finished[finishedID].Sizes = append([]SizeQuantity{}, sizes...)
	return nil
}

func (tx *memoryTx) CompleteProcessing(ctx context.Context, id int64) (bool, error) {
	return tx.repo.Transition(ctx, id, StatusCompleted)
}

func (tx *memoryTx) GetProcessingStatus(ctx context.Context, id int64) (Status, error) {
	return tx.repo.GetStatus(ctx, id)
}

func activeProcessing(t *testing.T, svc *Service, code string) ProcessingProduct {
	t.Helper()
	p, err := svc.CreateProcessing(context.Background(), CreateProcessingInput{
		MaterialID:     1,
		ProcessingCode: code,
		CuttingCost:    10,
		EmbroideryCost: 5,
		PackagingCost:  2,
		OtherCost:      1,
		StartDate:      time.Now(),
	})
	require.NoError(t, err)
	return p
}

func TestTotalCostComputedOnRead(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	p := activeProcessing(t, svc, "PROC-1")
	require.InDelta(t, 18.0, p.TotalCost(), 0.0001)
}

func TestCompleteIsIdempotent(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	p := activeProcessing(t, svc, "PROC-1")
	ctx := context.Background()

	done, err := svc.Complete(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.EndDate)

	// Second completion finds no active row and succeeds without change.
	again, err := svc.Complete(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, again.Status)
}

func TestCompleteRefusesInactive(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	p := activeProcessing(t, svc, "PROC-1")
	ctx := context.Background()

	_, err := svc.Deactivate(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, p.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Deactivate(ctx, p.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDuplicateProcessingCode(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	activeProcessing(t, svc, "PROC-1")
	_, err := svc.CreateProcessing(context.Background(), CreateProcessingInput{
		MaterialID:     1,
		ProcessingCode: "PROC-1",
		StartDate:      time.Now(),
	})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateFinishedCompletesProcessing(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	p := activeProcessing(t, svc, "PROC-1")
	ctx := context.Background()

	f, err := svc.CreateFinished(ctx, CreateFinishedInput{
		ProcessingProductID: p.ID,
		FinishedCode:        "FIN-1",
		ProductType:         "polo",
		Sizes:               []SizeQuantity{{Size: "M", Quantity: 40}, {Size: "L", Quantity: 20}},
		Price:               12.5,
		Category:            "menswear",
	})
	require.NoError(t, err)
	require.Len(t, f.Sizes, 2)

	got, err := svc.GetProcessing(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
}

func TestCreateFinishedRefusesInactiveProcessing(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	p := activeProcessing(t, svc, "PROC-1")
	ctx := context.Background()

	_, err := svc.Deactivate(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.CreateFinished(ctx, CreateFinishedInput{
		ProcessingProductID: p.ID,
		FinishedCode:        "FIN-1",
		Sizes:               []SizeQuantity{{Size: "M", Quantity: 10}},
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateFinishedOnCompletedProcessing(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	p := activeProcessing(t, svc, "PROC-1")
	ctx := context.Background()

	_, err := svc.CreateFinished(ctx, CreateFinishedInput{
		ProcessingProductID: p.ID,
		FinishedCode:        "FIN-1",
		Sizes:               []SizeQuantity{{Size: "M", Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = svc.CreateFinished(ctx, CreateFinishedInput{
		ProcessingProductID: p.ID,
		FinishedCode:        "FIN-2",
		Sizes:               []SizeQuantity{{Size: "L", Quantity: 4}},
	})
	require.NoError(t, err)
}

func TestCreateFinishedValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.CreateFinished(ctx, CreateFinishedInput{FinishedCode: "FIN-1"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateFinished(ctx, CreateFinishedInput{ProcessingProductID: 1, FinishedCode: "FIN-1"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateFinished(ctx, CreateFinishedInput{
		ProcessingProductID: 1,
		FinishedCode:        "FIN-1",
		Sizes:               []SizeQuantity{{Size: "", Quantity: 3}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

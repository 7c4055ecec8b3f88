package procurement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

type memoryRepo struct {
	orders    map[int64]*PurchaseOrder
	stock     map[int64]float64
	nextID    int64
	increment int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]*PurchaseOrder), stock: make(map[int64]float64)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	return *po, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]PurchaseOrder, error) {
	out := []PurchaseOrder{}
	for _, po := range r.orders {
		out = append(out, *po)
	}
	return out, nil
}

func (tx *memoryTx) InsertOrder(ctx context.Context, vendorID int64, total float64) (int64, error) {
	tx.repo.nextID++
	tx.repo.orders[tx.repo.nextID] = &PurchaseOrder{ID: tx.repo.nextID, VendorID: vendorID, Status: StatusPending, TotalAmount: total}
	return tx.repo.nextID, nil
}

func (tx *memoryTx) ReplaceOrder(ctx context.Context, id, vendorID int64, total float64) (bool, error) {
	po, ok := tx.repo.orders[id]
	if !ok || po.Status != StatusPending {
		return false, nil
	}
	po.VendorID = vendorID
	po.TotalAmount = total
	return true, nil
}

func (tx *memoryTx) InsertLines(ctx context.Context, orderID int64, lines []Line) error {
	po := tx.repo.orders[orderID]
	for i := range lines {
		lines[i].PurchaseOrderID = orderID
	}
	po.Lines = append(po.Lines, lines...)
	return nil
}

func (tx *memoryTx) DeleteLines(ctx context.Context, orderID int64) error {
	tx.repo.orders[orderID].Lines = nil
	return nil
}

func (tx *memoryTx) TransitionStatus(ctx context.Context, id int64, to Status, notFrom ...Status) (bool, error) {
	po, ok := tx.repo.orders[id]
	if !ok {
		return false, nil
	}
	for _, s := range notFrom {
		if po.Status == s {
			return false, nil
		}
	}
	po.Status = to
	return true, nil
}

func (tx *memoryTx) GetStatus(ctx context.Context, id int64) (Status, error) {
	po, ok := tx.repo.orders[id]
	if !ok {
		return "", ErrNotFound
	}
	return po.Status, nil
}

func (tx *memoryTx) GetLines(ctx context.Context, orderID int64) ([]Line, error) {
	return tx.repo.orders[orderID].Lines, nil
}

func (tx *memoryTx) ReceiveMaterial(ctx context.Context, materialID int64, quantity float64) error {
	tx.repo.stock[materialID] += quantity
	tx.repo.increment++
	return nil
}

type memoryIdem struct {
	keys map[string]bool
}

func (s *memoryIdem) CheckAndInsert(ctx context.Context, key, module string) error {
	if s.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	s.keys[key] = true
	return nil
}

func (s *memoryIdem) Delete(ctx context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

func TestCreateComputesTotals(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	po, err := svc.Create(context.Background(), CreateInput{VendorID: 7, Lines: []LineInput{
		{MaterialID: 1, Quantity: 10, UnitPrice: 2.5},
		{MaterialID: 2, Quantity: 4, UnitPrice: 10},
	}})
	require.NoError(t, err)
	require.Equal(t, StatusPending, po.Status)
	require.InDelta(t, 65.0, po.TotalAmount, 0.0001)
	require.Len(t, po.Lines, 2)
	require.InDelta(t, 25.0, po.Lines[0].TotalPrice, 0.0001)
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	po, err := svc.Create(ctx, CreateInput{VendorID: 7, Lines: []LineInput{{MaterialID: 1, Quantity: 1, UnitPrice: 5}}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, po.ID, UpdateInput{VendorID: 8, Lines: []LineInput{{MaterialID: 1, Quantity: 2, UnitPrice: 5}}})
	require.NoError(t, err)
	require.Equal(t, int64(8), updated.VendorID)
	require.InDelta(t, 10.0, updated.TotalAmount, 0.0001)

	_, err = svc.MarkOrdered(ctx, po.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, po.ID, UpdateInput{VendorID: 8, Lines: []LineInput{{MaterialID: 1, Quantity: 3, UnitPrice: 5}}})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMarkReceivedIncrementsOnce(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	po, err := svc.Create(ctx, CreateInput{VendorID: 7, Lines: []LineInput{
		{MaterialID: 1, Quantity: 10, UnitPrice: 2},
		{MaterialID: 2, Quantity: 3, UnitPrice: 4},
	}})
	require.NoError(t, err)

	got, err := svc.MarkReceived(ctx, po.ID, "")
	require.NoError(t, err)
	require.Equal(t, StatusReceived, got.Status)
	require.InDelta(t, 10.0, repo.stock[1], 0.0001)
	require.InDelta(t, 3.0, repo.stock[2], 0.0001)

	// Replay: conditional flip finds zero rows, stock untouched.
	got, err = svc.MarkReceived(ctx, po.ID, "")
	require.NoError(t, err)
	require.Equal(t, StatusReceived, got.Status)
	require.Equal(t, 2, repo.increment)
	require.InDelta(t, 10.0, repo.stock[1], 0.0001)
}

func TestMarkReceivedIdempotencyKey(t *testing.T) {
	repo := newMemoryRepo()
	idem := &memoryIdem{keys: make(map[string]bool)}
	svc := NewService(repo, idem, nil)
	ctx := context.Background()
	po, err := svc.Create(ctx, CreateInput{VendorID: 7, Lines: []LineInput{{MaterialID: 1, Quantity: 5, UnitPrice: 1}}})
	require.NoError(t, err)

	_, err = svc.MarkReceived(ctx, po.ID, "delivery-42")
	require.NoError(t, err)
	_, err = svc.MarkReceived(ctx, po.ID, "delivery-42")
	require.NoError(t, err)
	require.Equal(t, 1, repo.increment)
}

func TestCancelledOrderCannotBeReceived(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	po, err := svc.Create(ctx, CreateInput{VendorID: 7, Lines: []LineInput{{MaterialID: 1, Quantity: 5, UnitPrice: 1}}})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.MarkReceived(ctx, po.ID, "")
	require.ErrorIs(t, err, ErrInvalidState)
	require.Zero(t, repo.increment)

	_, err = svc.Cancel(ctx, po.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{VendorID: 0, Lines: []LineInput{{MaterialID: 1, Quantity: 1}}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{VendorID: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{VendorID: 1, Lines: []LineInput{{MaterialID: 1, Quantity: -1, UnitPrice: 2}}})
	require.ErrorIs(t, err, ErrValidation)
}

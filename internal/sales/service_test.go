package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stockRow struct {
	size     string
	quantity float64
}

type memoryRepo struct {
	stock   map[int64]*stockRow
	sales   map[int64]*Sale
	returns map[[2]int64]bool
	logs    int
	nextID  int64

	// conflictOnInsert simulates a concurrent return committing between the
	// duplicate check and the insert, so the insert loses on the unique
	// (sale, finished good) constraint.
	conflictOnInsert bool
}

type memoryTx struct {
	repo      *memoryRepo
	staged    map[int64]float64
	saleID    int64
	sale      *Sale
	returnLog int
	returned  []ReturnedItem
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		stock:   make(map[int64]*stockRow),
		sales:   make(map[int64]*Sale),
		returns: make(map[[2]int64]bool),
	}
}

// WithTx stages every mutation and only applies it when the callback
// succeeds, mirroring the all-or-nothing database transaction.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, staged: make(map[int64]float64)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, delta := range tx.staged {
		r.stock[id].quantity += delta
	}
	if tx.sale != nil {
		r.sales[tx.saleID] = tx.sale
	}
	for _, ret := range tx.returned {
		r.returns[[2]int64{ret.SaleID, ret.FinishedGoodID}] = true
		sale := r.sales[ret.SaleID]
		sale.Returns = append(sale.Returns, ret)
	}
	r.logs += tx.returnLog
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return *s, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Sale, error) {
	out := []Sale{}
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memoryRepo) GetFinishedGoodStock(ctx context.Context, id int64) (string, float64, error) {
	row, ok := r.stock[id]
	if !ok {
		return "", 0, ErrNotFound
	}
	return row.size, row.quantity, nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, customerID *int64, paymentMethod string, total float64) (int64, error) {
	tx.repo.nextID++
	tx.saleID = tx.repo.nextID
	tx.sale = &Sale{ID: tx.saleID, CustomerID: customerID, PaymentMethod: paymentMethod, TotalAmount: total, CreatedAt: time.Now()}
	return tx.saleID, nil
}

func (tx *memoryTx) InsertItems(ctx context.Context, saleID int64, items []SaleItem) error {
	for i := range items {
		items[i].SaleID = saleID
	}
	tx.sale.Items = append(tx.sale.Items, items...)
	return nil
}

func (tx *memoryTx) AdjustFinishedGood(ctx context.Context, id int64, delta float64) error {
	row, ok := tx.repo.stock[id]
	if !ok {
		return ErrNotFound
	}
	if row.quantity+tx.staged[id]+delta < 0 {
		return ErrInsufficientStock
	}
	tx.staged[id] += delta
	return nil
}

func (tx *memoryTx) HasReturn(ctx context.Context, saleID, finishedGoodID int64) (bool, error) {
	return tx.repo.returns[[2]int64{saleID, finishedGoodID}], nil
}

func (tx *memoryTx) InsertReturn(ctx context.Context, input ReturnInput) (int64, error) {
	if tx.repo.conflictOnInsert {
		return 0, ErrDuplicateReturn
	}
	tx.returned = append(tx.returned, ReturnedItem{
		SaleID:         input.SaleID,
		FinishedGoodID: input.FinishedGoodID,
		Quantity:       input.Quantity,
		Reason:         input.Reason,
		CreatedAt:      time.Now(),
	})
	return int64(len(tx.returned)), nil
}

func (tx *memoryTx) InsertReturnLog(ctx context.Context, input ReturnInput) error {
	tx.returnLog++
	return nil
}

func sellableRepo() *memoryRepo {
	repo := newMemoryRepo()
	repo.stock[1] = &stockRow{size: "M", quantity: 10}
	repo.stock[2] = &stockRow{size: "L", quantity: 2}
	return repo
}

func TestCreateSaleDecrementsAndTotals(t *testing.T) {
	repo := sellableRepo()
	svc := NewService(repo, nil)

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		PaymentMethod: "cash",
		Items: []SaleItemInput{
			{FinishedGoodID: 1, Quantity: 3, UnitPrice: 20},
			{FinishedGoodID: 2, Quantity: 1, UnitPrice: 35},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 95.0, sale.TotalAmount, 0.0001)
	require.Len(t, sale.Items, 2)
	require.Equal(t, "M", sale.Items[0].Size)
	require.InDelta(t, 7.0, repo.stock[1].quantity, 0.0001)
	require.InDelta(t, 1.0, repo.stock[2].quantity, 0.0001)
}

func TestCreateSaleNamesOffendingItem(t *testing.T) {
	repo := sellableRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{
		PaymentMethod: "cash",
		Items: []SaleItemInput{
			{FinishedGoodID: 1, Quantity: 3, UnitPrice: 20},
			{FinishedGoodID: 2, Quantity: 5, UnitPrice: 35},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "finished good 2")
	require.Contains(t, err.Error(), "size L")

	// Nothing was decremented and no sale was stored.
	require.InDelta(t, 10.0, repo.stock[1].quantity, 0.0001)
	require.InDelta(t, 2.0, repo.stock[2].quantity, 0.0001)
	require.Empty(t, repo.sales)
}

func TestReturnRoundTrip(t *testing.T) {
	repo := sellableRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		PaymentMethod: "card",
		Items:         []SaleItemInput{{FinishedGoodID: 1, Quantity: 4, UnitPrice: 20}},
	})
	require.NoError(t, err)
	require.InDelta(t, 6.0, repo.stock[1].quantity, 0.0001)

	returned, err := svc.ReturnItem(ctx, ReturnInput{SaleID: sale.ID, FinishedGoodID: 1, Quantity: 2, Reason: "size issue"})
	require.NoError(t, err)
	require.Len(t, returned.Returns, 1)
	require.InDelta(t, 8.0, repo.stock[1].quantity, 0.0001)
	require.Equal(t, 1, repo.logs)
}

func TestReturnDuplicateRejected(t *testing.T) {
	repo := sellableRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		PaymentMethod: "cash",
		Items:         []SaleItemInput{{FinishedGoodID: 1, Quantity: 4, UnitPrice: 20}},
	})
	require.NoError(t, err)

	_, err = svc.ReturnItem(ctx, ReturnInput{SaleID: sale.ID, FinishedGoodID: 1, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.ReturnItem(ctx, ReturnInput{SaleID: sale.ID, FinishedGoodID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrDuplicateReturn)

	// The duplicate must not restock again.
	require.InDelta(t, 7.0, repo.stock[1].quantity, 0.0001)
}

func TestReturnConcurrentDuplicateRejected(t *testing.T) {
	repo := sellableRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		PaymentMethod: "cash",
		Items:         []SaleItemInput{{FinishedGoodID: 1, Quantity: 4, UnitPrice: 20}},
	})
	require.NoError(t, err)

	repo.conflictOnInsert = true
	_, err = svc.ReturnItem(ctx, ReturnInput{SaleID: sale.ID, FinishedGoodID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrDuplicateReturn)

	// The losing attempt rolls back entirely; no restock, no log entry.
	require.InDelta(t, 6.0, repo.stock[1].quantity, 0.0001)
	require.Equal(t, 0, repo.logs)
}

func TestReturnValidation(t *testing.T) {
	repo := sellableRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, CreateSaleInput{
		PaymentMethod: "cash",
		Items:         []SaleItemInput{{FinishedGoodID: 1, Quantity: 2, UnitPrice: 20}},
	})
	require.NoError(t, err)

	_, err = svc.ReturnItem(ctx, ReturnInput{SaleID: sale.ID, FinishedGoodID: 2, Quantity: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ReturnItem(ctx, ReturnInput{SaleID: sale.ID, FinishedGoodID: 1, Quantity: 5})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ReturnItem(ctx, ReturnInput{SaleID: 999, FinishedGoodID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

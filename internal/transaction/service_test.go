package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestService_Write_Batches(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewServiceWithBatchSize(repo, 500)

	txs := make([]*Transaction, 1200)
	for i := range txs {
		txs[i] = &Transaction{ID: NativeID("stripe", "txn_"+decimal.NewFromInt(int64(i)).String())}
	}

	var sizes []int

	repo.EXPECT().UpsertTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch []*Transaction) (int64, error) {
			sizes = append(sizes, len(batch))
			return int64(len(batch)), nil
		}).Times(3)

	written, err := svc.Write(context.Background(), txs)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), written)
	assert.Equal(t, []int{500, 500, 200}, sizes)
}

func TestService_Write_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo)

	// No repository call for an empty page.
	written, err := svc.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestService_Write_StopsOnBatchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewServiceWithBatchSize(repo, 2)

	txs := []*Transaction{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	gomock.InOrder(
		repo.EXPECT().UpsertTransactions(gomock.Any(), gomock.Any()).Return(int64(2), nil),
		repo.EXPECT().UpsertTransactions(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection reset")),
	)

	written, err := svc.Write(context.Background(), txs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 2")
	assert.Equal(t, int64(2), written)
}

func TestNativeID(t *testing.T) {
	assert.Equal(t, "stripe-txn_1NG7", NativeID("stripe", "txn_1NG7"))
	assert.Equal(t, "paypal-8AB12345", NativeID("paypal", "8AB12345"))
}

func TestFingerprintID(t *testing.T) {
	date := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	amount := decimal.RequireFromString("125.40")

	id := FingerprintID("wise", date, amount, "EUR", "Invoice 42")

	assert.Regexp(t, `^wise-fp-[0-9a-f]{16}$`, id)

	// Same fields always fingerprint to the same id, regardless of the
	// zone the date arrives in.
	paris := time.FixedZone("CET", 3600)
	same := FingerprintID("wise", date.In(paris), amount, "EUR", "Invoice 42")
	assert.Equal(t, id, same)

	// Any identifying field changing yields a different id.
	assert.NotEqual(t, id, FingerprintID("wise", date.Add(time.Second), amount, "EUR", "Invoice 42"))
	assert.NotEqual(t, id, FingerprintID("wise", date, amount.Add(decimal.New(1, -2)), "EUR", "Invoice 42"))
	assert.NotEqual(t, id, FingerprintID("wise", date, amount, "USD", "Invoice 42"))
	assert.NotEqual(t, id, FingerprintID("wise", date, amount, "EUR", "Invoice 43"))
}

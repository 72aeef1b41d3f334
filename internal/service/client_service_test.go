package service

import (
	"context"
	"sync"
	"testing"

	"nutscredit/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientService() (ClientService, *fakeClientRepo, *fakeAuditRepo) {
	repo := newFakeClientRepo()
	audit := newFakeAuditRepo()
	return NewClientService(repo, audit, fakeTxManager{}), repo, audit
}

func TestAddClient(t *testing.T) {
	svc, _, audit := newClientService()

	resp, created, err := svc.AddClient(context.Background(), "Chief", "Acme", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Acme", resp.Name)
	assert.Equal(t, "100.00", resp.Credit)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionAddClient, audit.entries[0].Action)
}

func TestAddClient_DuplicateIsNoOp(t *testing.T) {
	svc, _, audit := newClientService()

	_, created, err := svc.AddClient(context.Background(), "Chief", "Acme", decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, created)

	// Same name again: the existing record comes back untouched, even with a
	// different starting credit.
	resp, created, err := svc.AddClient(context.Background(), "Chief", "Acme", decimal.NewFromInt(999))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "100.00", resp.Credit)

	// The ignored insert is not audited.
	assert.Len(t, audit.entries, 1)
}

func TestAddClient_EmptyName(t *testing.T) {
	svc, _, _ := newClientService()

	_, _, err := svc.AddClient(context.Background(), "Chief", "   ", decimal.Zero)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestAdjustCredit_DeltasAccumulate(t *testing.T) {
	svc, _, _ := newClientService()

	_, _, err := svc.AddClient(context.Background(), "Chief", "Acme", decimal.NewFromInt(100))
	require.NoError(t, err)

	resp, err := svc.AdjustCredit(context.Background(), "Chief", "Acme", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, "150.00", resp.Credit)

	resp, err = svc.AdjustCredit(context.Background(), "Chief", "Acme", decimal.NewFromInt(-70))
	require.NoError(t, err)
	assert.Equal(t, "80.00", resp.Credit)
}

func TestAdjustCredit_ConcurrentDeltasAllLand(t *testing.T) {
	svc, _, _ := newClientService()

	_, _, err := svc.AddClient(context.Background(), "Chief", "Acme", decimal.Zero)
	require.NoError(t, err)

	// The delta is applied store-side, so interleaved adjustments must all
	// land regardless of order and none may overwrite another.
	const workers = 10
	const perWorker = 20
	errs := make(chan error, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		delta := decimal.NewFromInt(int64(w + 1))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, adjErr := svc.AdjustCredit(context.Background(), "Chief", "Acme", delta); adjErr != nil {
					errs <- adjErr
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for adjErr := range errs {
		require.NoError(t, adjErr)
	}

	// 20 rounds of each delta 1..10: 20 * 55.
	clients, _, err := svc.ListClients(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "1100.00", clients[0].Credit)
}

func TestAdjustCredit_UnknownClient(t *testing.T) {
	svc, _, _ := newClientService()

	_, err := svc.AdjustCredit(context.Background(), "Chief", "Nobody", decimal.NewFromInt(5))
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestListClients(t *testing.T) {
	svc, _, _ := newClientService()

	for _, name := range []string{"Acme", "Globex"} {
		_, _, err := svc.AddClient(context.Background(), "Chief", name, decimal.Zero)
		require.NoError(t, err)
	}

	clients, total, err := svc.ListClients(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, clients, 2)
}

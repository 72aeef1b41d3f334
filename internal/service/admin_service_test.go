package service

import (
	"context"
	"testing"

	"nutscredit/internal/auth"
	"nutscredit/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAdmin_OnlyMainAuthority(t *testing.T) {
	admins := newFakeAdminRepo()
	guard := auth.NewGuard("chief-1", admins)
	svc := NewAdminService(admins, newFakeAuditRepo(), fakeTxManager{}, guard)

	t.Run("authority may add", func(t *testing.T) {
		resp, created, err := svc.AddAdmin(context.Background(), "chief-1", "Bob")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "Bob", resp.Name)
	})

	t.Run("anyone else is denied", func(t *testing.T) {
		_, _, err := svc.AddAdmin(context.Background(), "user-2", "Eve")
		assert.ErrorIs(t, err, ErrNotAuthorized)

		// The denial wrote nothing.
		admins, total, listErr := svc.ListAdmins(context.Background(), 1, 50)
		require.NoError(t, listErr)
		assert.EqualValues(t, 1, total)
		require.Len(t, admins, 1)
		assert.Equal(t, "Bob", admins[0].Name)
	})

	t.Run("duplicate name is a no-op", func(t *testing.T) {
		resp, created, err := svc.AddAdmin(context.Background(), "chief-1", "Bob")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Bob", resp.Name)
	})
}

func TestAddNut_AndAdjustPackages(t *testing.T) {
	nuts := newFakeNutRepo()
	audit := newFakeAuditRepo()
	svc := NewNutService(nuts, audit, fakeTxManager{})

	resp, created, err := svc.AddNut(context.Background(), "Chief", "Cashews", 40)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 40, resp.Packages)

	resp, err = svc.AdjustPackages(context.Background(), "Chief", "Cashews", -15)
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Packages)

	_, err = svc.AdjustPackages(context.Background(), "Chief", "Walnuts", 5)
	assert.ErrorIs(t, err, ErrNutNotFound)

	require.Len(t, audit.entries, 2)
	assert.Equal(t, model.ActionAddNut, audit.entries[0].Action)
	assert.Equal(t, model.ActionAdjustPackages, audit.entries[1].Action)
}

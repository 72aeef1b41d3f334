package auth

import (
	"context"
	"testing"

	"nutscredit/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubAdminRepo struct {
	byName map[string]*model.Admin
	err    error
}

func (s *stubAdminRepo) CreateIfAbsent(ctx context.Context, admin *model.Admin) (bool, error) {
	return false, nil
}

func (s *stubAdminRepo) GetByName(ctx context.Context, name string) (*model.Admin, error) {
	if s.err != nil {
		return nil, s.err
	}
	if a, ok := s.byName[name]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAdminRepo) List(ctx context.Context, page, limit int) ([]model.Admin, int64, error) {
	return nil, 0, nil
}

func TestIsMainAuthority(t *testing.T) {
	g := NewGuard("chief-1", &stubAdminRepo{})

	assert.True(t, g.IsMainAuthority("chief-1"))
	assert.False(t, g.IsMainAuthority("user-2"))
	assert.False(t, g.IsMainAuthority(""))
}

func TestIsMainAuthority_Unconfigured(t *testing.T) {
	// With no configured authority nobody qualifies, not even an empty id.
	g := NewGuard("", &stubAdminRepo{})

	assert.False(t, g.IsMainAuthority(""))
	assert.False(t, g.IsMainAuthority("anyone"))
}

func TestRegisteredAdmin(t *testing.T) {
	bob := &model.Admin{ID: uuid.New(), Name: "Bob"}
	g := NewGuard("chief-1", &stubAdminRepo{byName: map[string]*model.Admin{"Bob": bob}})

	t.Run("known name resolves", func(t *testing.T) {
		admin, err := g.RegisteredAdmin(context.Background(), "Bob")
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.Equal(t, bob.ID, admin.ID)
	})

	t.Run("unknown name is a plain miss", func(t *testing.T) {
		admin, err := g.RegisteredAdmin(context.Background(), "Mallory")
		require.NoError(t, err)
		assert.Nil(t, admin)
	})

	t.Run("store errors propagate", func(t *testing.T) {
		broken := NewGuard("chief-1", &stubAdminRepo{err: assert.AnError})
		_, err := broken.RegisteredAdmin(context.Background(), "Bob")
		assert.ErrorIs(t, err, assert.AnError)
	})
}

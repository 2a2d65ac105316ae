package cache

import (
	"context"
	"testing"

	"civicdesk/internal/conf"
	"civicdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestUserCache_CachesHits(t *testing.T) {
	inner := new(mockUserRepository)
	id := primitive.NewObjectID()
	inner.On("GetUserByID", mock.Anything, id).Return(&models.User{UserId: id, Name: "Jane Admin"}, nil).Once()

	repo := NewUserRepository(inner, &conf.AuditConfig{ActorCacheSize: 16, ActorCacheTTLSeconds: 60})

	for i := 0; i < 3; i++ {
		u, err := repo.GetUserByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Jane Admin", u.Name)
		u.Name = "mutated"
	}
	inner.AssertExpectations(t)
}

func TestUserCache_DoesNotCacheMisses(t *testing.T) {
	inner := new(mockUserRepository)
	id := primitive.NewObjectID()
	inner.On("GetUserByID", mock.Anything, id).Return(nil, mongo.ErrNoDocuments).Once()
	inner.On("GetUserByID", mock.Anything, id).Return(&models.User{UserId: id, Name: "New Hire"}, nil).Once()

	repo := NewUserRepository(inner, &conf.AuditConfig{ActorCacheSize: 16, ActorCacheTTLSeconds: 60})

	_, err := repo.GetUserByID(context.Background(), id)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	u, err := repo.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "New Hire", u.Name)
	inner.AssertExpectations(t)
}

func TestNewUserRepository_Disabled(t *testing.T) {
	inner := new(mockUserRepository)
	assert.Same(t, inner, NewUserRepository(inner, &conf.AuditConfig{}))
	assert.Same(t, inner, NewUserRepository(inner, nil))
}

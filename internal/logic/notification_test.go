package logic

import (
	"context"
	"testing"

	"civicdesk/internal/constants"
	"civicdesk/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationLogic_Send(t *testing.T) {
	t.Run("user scope", func(t *testing.T) {
		n := &mockNotifier{}
		l := NewNotificationLogic(n, zap.NewNop())
		n.On("EmitToUser", "u1", "COMPLAINT_UPDATED", mock.Anything).Return(1)

		res, err := l.Send(context.Background(), &dto.SendNotificationRequest{
			Scope: constants.ScopeUser, Target: " u1 ", Type: "COMPLAINT_UPDATED", Data: map[string]string{"id": "c1"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, "u1", res.Target)
		n.AssertExpectations(t)
	})

	t.Run("role scope with no live recipients is not an error", func(t *testing.T) {
		n := &mockNotifier{}
		l := NewNotificationLogic(n, zap.NewNop())
		n.On("EmitToRole", "staff", "EVENT_CREATED", nil).Return(0)

		_, err := l.Send(context.Background(), &dto.SendNotificationRequest{Scope: constants.ScopeRole, Target: "staff", Type: "EVENT_CREATED"})
		require.NoError(t, err)
	})

	t.Run("broadcast is limited to announcement lifecycle", func(t *testing.T) {
		n := &mockNotifier{}
		l := NewNotificationLogic(n, zap.NewNop())

		_, err := l.Send(context.Background(), &dto.SendNotificationRequest{Scope: constants.ScopeAll, Type: "COMPLAINT_UPDATED"})
		assert.ErrorIs(t, err, ErrValidation)
		n.AssertNotCalled(t, "BroadcastToAll", mock.Anything, mock.Anything)

		n.On("BroadcastToAll", constants.NotificationAnnouncementPublished, mock.Anything).Return(3)
		_, err = l.Send(context.Background(), &dto.SendNotificationRequest{
			Scope: constants.ScopeAll,
			Type:  constants.NotificationAnnouncementPublished,
			Data:  map[string]string{"id": "a1"},
		})
		require.NoError(t, err)
		n.AssertExpectations(t)
	})

	t.Run("invalid requests", func(t *testing.T) {
		l := NewNotificationLogic(&mockNotifier{}, zap.NewNop())
		reqs := []*dto.SendNotificationRequest{
			{Scope: constants.ScopeUser, Type: "X"},
			{Scope: constants.ScopeRole, Target: "staff"},
			{Scope: "team", Target: "a", Type: "X"},
		}
		for _, req := range reqs {
			_, err := l.Send(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		}
	})
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/academia-moderation/internal/model"
)

func TestModeration_PromoteUser_Self(t *testing.T) {
	for _, isAdmin := range []bool{false, true} {
		m := newMockedModeration(t)
		caller := model.Caller{ID: uuid.New(), Email: "me@x.com", IsAdmin: isAdmin}

		_, err := m.svc.PromoteUser(context.Background(), caller, caller.ID)
		require.Error(t, err)
		assert.Equal(t, model.KindInvalidOperation, model.KindOf(err))
		assert.EqualError(t, err, "cannot promote yourself")
	}
}

func TestModeration_PromoteUser(t *testing.T) {
	caller := model.Caller{ID: uuid.New(), Email: "admin@x.com", IsAdmin: true}
	userID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(m mockedModeration)
		wantKind  model.ErrorKind
		wantErr   bool
	}{
		{
			name: "regular user is promoted",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("GetByIDForUpdate", mock.Anything, userID).Return(model.User{ID: userID}, nil)
				m.users.On("Promote", mock.Anything, userID, caller.ID, fixedNow).Return(true, nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID, IsAdmin: true}, nil)
			},
		},
		{
			name: "already admin",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("GetByIDForUpdate", mock.Anything, userID).Return(model.User{ID: userID, IsAdmin: true}, nil)
			},
			wantErr:  true,
			wantKind: model.KindConflict,
		},
		{
			name: "missing user",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("GetByIDForUpdate", mock.Anything, userID).Return(model.User{}, model.ErrNotFound)
			},
			wantErr:  true,
			wantKind: model.KindNotFound,
		},
		{
			name: "store failure",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("GetByIDForUpdate", mock.Anything, userID).Return(model.User{ID: userID}, nil)
				m.users.On("Promote", mock.Anything, userID, caller.ID, fixedNow).Return(false, errors.New("broken pipe"))
			},
			wantErr:  true,
			wantKind: model.KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockedModeration(t)
			tt.mockSetup(m)

			got, err := m.svc.PromoteUser(context.Background(), caller, userID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, model.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.IsAdmin)
		})
	}
}

func TestModeration_DemoteUser(t *testing.T) {
	caller := model.Caller{ID: uuid.New(), Email: "admin@x.com", IsAdmin: true}
	userID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(m mockedModeration)
		wantKind  model.ErrorKind
		wantMsg   string
		wantErr   bool
	}{
		{
			name: "admin is demoted",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("CountAdminsForUpdate", mock.Anything).Return(int64(2), nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID, IsAdmin: true}, nil).Once()
				m.users.On("Demote", mock.Anything, userID, caller.ID, fixedNow).Return(true, nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID}, nil).Once()
			},
		},
		{
			name: "last admin",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("CountAdminsForUpdate", mock.Anything).Return(int64(1), nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID, IsAdmin: true}, nil)
			},
			wantErr:  true,
			wantKind: model.KindInvalidOperation,
			wantMsg:  "cannot demote the last admin",
		},
		{
			name: "guarded update loses",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("CountAdminsForUpdate", mock.Anything).Return(int64(2), nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID, IsAdmin: true}, nil)
				m.users.On("Demote", mock.Anything, userID, caller.ID, fixedNow).Return(false, nil)
			},
			wantErr:  true,
			wantKind: model.KindInvalidOperation,
			wantMsg:  "cannot demote the last admin",
		},
		{
			name: "not an admin",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("CountAdminsForUpdate", mock.Anything).Return(int64(3), nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{ID: userID}, nil)
			},
			wantErr:  true,
			wantKind: model.KindConflict,
		},
		{
			name: "missing user",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
				m.users.On("CountAdminsForUpdate", mock.Anything).Return(int64(3), nil)
				m.users.On("GetByID", mock.Anything, userID).Return(model.User{}, model.ErrNotFound)
			},
			wantErr:  true,
			wantKind: model.KindNotFound,
		},
		{
			name: "exhausted serialization retries",
			mockSetup: func(m mockedModeration) {
				m.tx.On("WithinTransaction", mock.Anything, mock.Anything).
					Return(errors.New("ERROR: could not serialize access (SQLSTATE 40001)"))
			},
			wantErr:  true,
			wantKind: model.KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockedModeration(t)
			tt.mockSetup(m)

			got, err := m.svc.DemoteUser(context.Background(), caller, userID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, model.KindOf(err))
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.False(t, got.IsAdmin)
		})
	}
}

func TestModeration_DemoteUser_LastAdmin(t *testing.T) {
	m := newMemoryModeration(t)
	admin := m.user(t, true)
	other := m.user(t, false)

	_, err := m.svc.DemoteUser(context.Background(), callerOf(other), admin.ID)
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidOperation, model.KindOf(err))

	counts, err := m.users.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Admins)
}

func TestModeration_PromoteThenSelfDemote(t *testing.T) {
	m := newMemoryModeration(t)
	u1 := m.user(t, false)
	u2 := m.user(t, true)

	promoted, err := m.svc.PromoteUser(context.Background(), callerOf(u2), u1.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
	require.NotNil(t, promoted.PromotedBy)
	assert.Equal(t, u2.ID, *promoted.PromotedBy)
	require.NotNil(t, promoted.PromotedAt)
	assert.Equal(t, fixedNow, *promoted.PromotedAt)

	_, err = m.svc.DemoteUser(context.Background(), callerOf(promoted), u1.ID)
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidOperation, model.KindOf(err))

	stored, err := m.users.GetByID(context.Background(), u1.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
	assert.Nil(t, stored.DemotedBy)

	_, err = m.svc.PromoteUser(context.Background(), callerOf(u2), u1.ID)
	require.Error(t, err)
	assert.Equal(t, model.KindConflict, model.KindOf(err))
}

func TestModeration_DemoteUser_Attribution(t *testing.T) {
	m := newMemoryModeration(t)
	a := m.user(t, true)
	b := m.user(t, true)

	demoted, err := m.svc.DemoteUser(context.Background(), callerOf(a), b.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)
	require.NotNil(t, demoted.DemotedBy)
	assert.Equal(t, a.ID, *demoted.DemotedBy)
	require.NotNil(t, demoted.DemotedAt)
}

func TestModeration_DemoteUser_Concurrent(t *testing.T) {
	for range 20 {
		m := newMemoryModeration(t)
		a := m.user(t, true)
		b := m.user(t, true)

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, 2)
		)
		demote := func(i int, caller, target model.User) {
			defer wg.Done()
			<-start
			_, errs[i] = m.svc.DemoteUser(context.Background(), callerOf(caller), target.ID)
		}

		wg.Add(2)
		go demote(0, a, b)
		go demote(1, b, a)
		close(start)
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.Equal(t, model.KindInvalidOperation, model.KindOf(err))
		}
		assert.Equal(t, 1, succeeded)

		counts, err := m.users.Counts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts.Admins)
	}
}

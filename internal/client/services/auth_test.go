package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/intervals/internal/client/repositories/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, fc *fakeClient) (AuthService, state.Repository) {
	t.Helper()
	_, st := setupLocal(t)
	return NewAuthService(fc, st), st
}

func TestLogin_PersistsSession(t *testing.T) {
	fc := &fakeClient{loginToken: "tok1"}
	svc, st := newAuthService(t, fc)
	ctx := context.Background()

	switched, err := svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.False(t, switched)

	token, err := st.Get(ctx, state.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok1", token)

	profile, err := st.Get(ctx, state.KeyProfile)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile)
}

func TestLogin_DetectsProfileSwitch(t *testing.T) {
	fc := &fakeClient{loginToken: "tok1"}
	svc, _ := newAuthService(t, fc)
	ctx := context.Background()

	switched, err := svc.Login(ctx, "alice", "")
	require.NoError(t, err)
	assert.False(t, switched)

	// same profile again is not a switch
	switched, err = svc.Login(ctx, "alice", "")
	require.NoError(t, err)
	assert.False(t, switched)

	switched, err = svc.Login(ctx, "bob", "")
	require.NoError(t, err)
	assert.True(t, switched)
}

func TestLogin_ServerError(t *testing.T) {
	fc := &fakeClient{loginErr: errors.New("boom")}
	svc, st := newAuthService(t, fc)
	ctx := context.Background()

	_, err := svc.Login(ctx, "alice", "")
	assert.Error(t, err)

	token, err := st.Get(ctx, state.KeyToken)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestLogout_ClearsLocalToken(t *testing.T) {
	fc := &fakeClient{loginToken: "tok1"}
	svc, st := newAuthService(t, fc)
	ctx := context.Background()

	_, err := svc.Login(ctx, "alice", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))

	token, err := st.Get(ctx, state.KeyToken)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, fc.Token())
}

func TestRestoreSession(t *testing.T) {
	fc := &fakeClient{}
	svc, st := newAuthService(t, fc)
	ctx := context.Background()

	// nothing stored
	profile, err := svc.RestoreSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, profile)

	require.NoError(t, st.Set(ctx, state.KeyToken, "tok1"))
	require.NoError(t, st.Set(ctx, state.KeyProfile, "alice"))

	profile, err = svc.RestoreSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile)
	assert.Equal(t, "tok1", fc.Token())
}

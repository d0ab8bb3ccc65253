package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	store, err := NewUserStore(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	// 密码永远不以明文落库
	assert.NotEqual(t, "secret1", user.PasswordHash)

	got, err := store.Authenticate(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLogin)
}

func TestRegisterDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	// 邮箱重复
	_, err = store.Register(ctx, "bob", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, ErrUserExists)

	// 用户名重复
	_, err = store.Register(ctx, "alice", "bob@example.com", "secret2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthenticateFailures(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = store.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestGetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	got, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = store.GetByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	updated, err := store.UpdateProfile(ctx, user.ID, map[string]any{
		"username":  "alice2",
		"full_name": "Alice Liddell",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "Alice Liddell", updated.FullName)

	// 不在白名单里的字段被忽略，没有可更新的内容
	_, err = store.UpdateProfile(ctx, user.ID, map[string]any{"email": "new@example.com"})
	assert.ErrorIs(t, err, ErrNoChanges)

	got, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestUpdateProfilePassword(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.Register(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = store.UpdateProfile(ctx, user.ID, map[string]any{"password": "secret2"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.VerifyPassword(ctx, user.ID, "secret1"), ErrInvalidPassword)
	assert.NoError(t, store.VerifyPassword(ctx, user.ID, "secret2"))

	// 旧密码登录失败，新密码可用
	_, err = store.Authenticate(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = store.Authenticate(ctx, "alice@example.com", "secret2")
	assert.NoError(t, err)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateProfile(context.Background(), "no-such-id",
		map[string]any{"username": "ghost"})
	assert.ErrorIs(t, err, ErrNoChanges)
}

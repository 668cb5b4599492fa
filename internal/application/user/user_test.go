package user

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/user"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/mysql"
	redisstore "github.com/xiebiao/library-catalog/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
	"github.com/xiebiao/library-catalog/pkg/jwt"
)

const password = "Passw0rd123"

type env struct {
	register *RegisterUseCase
	login    *LoginUseCase
	remove   *DeleteUserUseCase

	users     user.Repository
	instances instance.Repository
	books     catalog.BookRepository
	caps      *mysql.CapabilityStore
	sessions  *redisstore.SessionStore
	mr        *miniredis.Miniredis
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := mysql.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name), false)
	require.NoError(t, err)
	require.NoError(t, mysql.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := mysql.NewUserRepository(db)
	caps := mysql.NewCapabilityStore(db)
	instances := mysql.NewInstanceRepository(db)
	sessions := redisstore.NewSessionStore(client)
	svc := user.NewService(users, user.WithBcryptCost(bcrypt.MinCost))
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)

	return &env{
		register:  NewRegisterUseCase(svc),
		login:     NewLoginUseCase(svc, jwtManager, sessions),
		remove:    NewDeleteUserUseCase(caps, mysql.NewTxManager(db), users, instances, caps, sessions),
		users:     users,
		instances: instances,
		books:     mysql.NewBookRepository(db),
		caps:      caps,
		sessions:  sessions,
		mr:        mr,
	}
}

func (e *env) signUp(t *testing.T, email string) *UserInfo {
	t.Helper()
	info, err := e.register.Execute(context.Background(), RegisterRequest{Email: email, Password: password, Nickname: "nick"})
	require.NoError(t, err)
	return info
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	info := e.signUp(t, "reader@example.com")
	assert.NotZero(t, info.ID)

	_, err := e.register.Execute(ctx, RegisterRequest{Email: "reader@example.com", Password: password, Nickname: "again"})
	assert.True(t, apperrors.IsUniqueViolation(err))

	resp, err := e.login.Execute(ctx, LoginRequest{Email: "reader@example.com", Password: password, ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, info.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	sess, err := e.sessions.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", sess["ip"])

	_, err = e.login.Execute(ctx, LoginRequest{Email: "reader@example.com", Password: "wrong1234"})
	assert.Error(t, err)
}

func TestLogoutAndRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signUp(t, "reader@example.com")

	resp, err := e.login.Execute(ctx, LoginRequest{Email: "reader@example.com", Password: password})
	require.NoError(t, err)

	refreshed, err := e.login.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, e.login.Logout(ctx, info.ID, resp.AccessToken))
	blocked, err := e.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blocked)

	_, err = e.sessions.GetSession(ctx, info.ID)
	assert.Error(t, err)

	// 登出后Refresh Token同样失效
	_, err = e.login.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, errTokenRevoked)

	_, err = e.login.Refresh(ctx, "not-a-token")
	assert.Error(t, err)

	again, err := e.login.Execute(ctx, LoginRequest{Email: "reader@example.com", Password: password})
	require.NoError(t, err)
	_, err = e.login.Refresh(ctx, again.RefreshToken)
	assert.NoError(t, err)
}

func TestDeleteUser_RevokesRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.signUp(t, "admin@example.com")
	reader := e.signUp(t, "reader@example.com")
	require.NoError(t, e.caps.Grant(ctx, admin.ID, identity.CapDeleteUser))

	resp, err := e.login.Execute(ctx, LoginRequest{Email: "reader@example.com", Password: password})
	require.NoError(t, err)
	_, err = e.login.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)

	_, err = e.remove.Execute(ctx, identity.User(admin.ID), reader.ID)
	require.NoError(t, err)

	_, err = e.login.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, errTokenRevoked)
}

func TestDeleteUser_ClearsBorrowerKeepsStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.signUp(t, "admin@example.com")
	reader := e.signUp(t, "reader@example.com")
	require.NoError(t, e.caps.Grant(ctx, admin.ID, identity.CapDeleteUser))
	require.NoError(t, e.caps.Grant(ctx, reader.ID, identity.CapAddBook))

	b, err := catalog.NewBook(catalog.BookInput{Title: "Emma", ISBN: "9780141439587"})
	require.NoError(t, err)
	require.NoError(t, e.books.Create(ctx, b))

	var ids []instance.BookInstance
	for _, st := range []instance.Status{instance.StatusCheckedOut, instance.StatusReserved} {
		inst, err := instance.NewBookInstance(b.ID, "x", st, &reader.ID)
		require.NoError(t, err)
		require.NoError(t, e.instances.Create(ctx, inst))
		ids = append(ids, *inst)
	}

	_, err = e.remove.Execute(ctx, identity.User(reader.ID), admin.ID)
	assert.True(t, apperrors.IsPermissionDenied(err))

	resp, err := e.remove.Execute(ctx, identity.User(admin.ID), reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.ClearedInstances)

	for _, want := range ids {
		got, err := e.instances.FindByID(ctx, want.ID)
		require.NoError(t, err)
		assert.Nil(t, got.BorrowerID)
		assert.Equal(t, want.Status, got.Status)
	}

	exists, err := e.users.Exists(ctx, reader.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	caps, err := e.caps.List(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, caps)

	_, err = e.remove.Execute(ctx, identity.User(admin.ID), reader.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

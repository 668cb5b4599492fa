package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/user"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
	"github.com/xiebiao/library-catalog/pkg/metrics"
	"github.com/xiebiao/library-catalog/pkg/mq"
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []mq.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, msg interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, msg.(mq.Event))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type fixture struct {
	uc        *UseCase
	pub       *recordingPublisher
	bookID    uint
	librarian identity.Identity
	reader    identity.Identity
	other     identity.Identity
}

func newFixture(t *testing.T) *fixture {
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

	ctx := context.Background()
	users := mysql.NewUserRepository(db)
	caps := mysql.NewCapabilityStore(db)
	books := mysql.NewBookRepository(db)

	ids := make([]uint, 3)
	for i, email := range []string{"lib@example.com", "reader@example.com", "other@example.com"} {
		u := user.NewUser(email, "hash", "nick")
		require.NoError(t, users.Create(ctx, u))
		ids[i] = u.ID
	}
	require.NoError(t, caps.Grant(ctx, ids[0], identity.CapAddEditInstance, identity.CapMarkReturned))

	b, err := catalog.NewBook(catalog.BookInput{Title: "Emma", ISBN: "9780141439587"})
	require.NoError(t, err)
	require.NoError(t, books.Create(ctx, b))

	pub := &recordingPublisher{}
	svc := instance.NewService(mysql.NewInstanceRepository(db), books, users, caps, instance.StrictPolicy())
	return &fixture{
		uc:        NewUseCase(svc, pub),
		pub:       pub,
		bookID:    b.ID,
		librarian: identity.User(ids[0]),
		reader:    identity.User(ids[1]),
		other:     identity.User(ids[2]),
	}
}

func (f *fixture) available(t *testing.T) uuid.UUID {
	t.Helper()
	item, err := f.uc.CreateInstance(context.Background(), f.librarian, CreateInstanceRequest{
		BookID: f.bookID, Imprint: "Penguin Classics", Status: "available",
	})
	require.NoError(t, err)
	id, err := uuid.Parse(item.ID)
	require.NoError(t, err)
	return id
}

func TestUseCase_CheckoutAndReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.available(t)

	metrics.InitMetrics()
	before := counterValue(t, metrics.LoanTransitionsTotal.With(prometheus.Labels{"from": "available", "to": "checked_out"}))

	item, err := f.uc.Checkout(ctx, f.librarian, id, f.reader.UserID)
	require.NoError(t, err)
	assert.Equal(t, "checked_out", item.Status)
	require.NotNil(t, item.From)
	assert.Equal(t, "available", *item.From)
	require.NotNil(t, item.BorrowerID)
	assert.Equal(t, f.reader.UserID, *item.BorrowerID)

	after := counterValue(t, metrics.LoanTransitionsTotal.With(prometheus.Labels{"from": "available", "to": "checked_out"}))
	assert.Equal(t, before+1, after)

	mine, err := f.uc.MyLoans(ctx, f.reader)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, item.ID, mine[0].ID)

	mine, err = f.uc.MyLoans(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, mine)

	item, err = f.uc.Return(ctx, f.librarian, id)
	require.NoError(t, err)
	assert.Equal(t, "available", item.Status)
	assert.Nil(t, item.BorrowerID)

	require.Equal(t, []string{"loan.checked_out", "loan.available"}, f.pub.keys)
	ev, ok := f.pub.events[0].Payload.(Event)
	require.True(t, ok)
	assert.Equal(t, id.String(), ev.InstanceID)
	assert.Equal(t, "available", ev.From)
	assert.Equal(t, "checked_out", ev.To)
	assert.Equal(t, f.librarian.UserID, ev.ActorID)
}

func TestUseCase_ReserveThenCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.available(t)

	_, err := f.uc.Reserve(ctx, f.librarian, id, f.reader.UserID)
	require.NoError(t, err)

	// 预约转借出沿用借阅人
	item, err := f.uc.SetStatus(ctx, f.librarian, id, "checked_out", nil)
	require.NoError(t, err)
	require.NotNil(t, item.BorrowerID)
	assert.Equal(t, f.reader.UserID, *item.BorrowerID)

	_, err = f.uc.SetStatus(ctx, f.librarian, id, "reserved", &f.reader.UserID)
	assert.ErrorIs(t, err, instance.ErrInvalidStatusTransition)

	_, err = f.uc.SetStatus(ctx, f.librarian, id, "lost", nil)
	assert.ErrorIs(t, err, instance.ErrInvalidStatus)
}

func TestUseCase_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.available(t)

	metrics.InitMetrics()
	counter := metrics.PermissionDeniedTotal.With(prometheus.Labels{"capability": string(identity.CapAddEditInstance)})
	before := counterValue(t, counter)

	_, err := f.uc.Checkout(ctx, f.reader, id, f.reader.UserID)
	assert.True(t, apperrors.IsPermissionDenied(err))
	assert.Equal(t, before+1, counterValue(t, counter))

	_, err = f.uc.CreateInstance(ctx, f.reader, CreateInstanceRequest{BookID: f.bookID, Imprint: "x"})
	assert.True(t, apperrors.IsPermissionDenied(err))

	_, err = f.uc.AllLoans(ctx, f.reader)
	assert.True(t, apperrors.IsPermissionDenied(err))

	_, err = f.uc.MyLoans(ctx, identity.Anonymous())
	assert.Error(t, err)

	assert.Empty(t, f.pub.keys)
}

func TestUseCase_PublishFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.available(t)
	f.pub.err = errors.New("broker unavailable")

	_, err := f.uc.Checkout(ctx, f.librarian, id, f.reader.UserID)
	require.NoError(t, err)

	got, err := f.uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "checked_out", got.Status)
}

func TestUseCase_InstanceManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.uc.CreateInstance(ctx, f.librarian, CreateInstanceRequest{BookID: f.bookID, Imprint: "First"})
	require.NoError(t, err)
	assert.Equal(t, "unavailable", item.Status)
	id := uuid.MustParse(item.ID)

	_, err = f.uc.CreateInstance(ctx, f.librarian, CreateInstanceRequest{BookID: 999, Imprint: "x"})
	assert.True(t, apperrors.IsInvalidReference(err))

	item, err = f.uc.UpdateImprint(ctx, f.librarian, id, "Second")
	require.NoError(t, err)
	assert.Equal(t, "Second", item.Imprint)

	list, err := f.uc.ListByBook(ctx, f.bookID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.uc.Delete(ctx, f.librarian, id))
	_, err = f.uc.Get(ctx, id)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUseCase_AllLoans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		id := f.available(t)
		if i%2 == 0 {
			_, err := f.uc.Checkout(ctx, f.librarian, id, f.reader.UserID)
			require.NoError(t, err)
		}
	}
	id := f.available(t)
	_, err := f.uc.Reserve(ctx, f.librarian, id, f.other.UserID)
	require.NoError(t, err)

	all, err := f.uc.AllLoans(ctx, f.librarian)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.uc.MyLoans(ctx, f.reader)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// 预约不算借出
	mine, err = f.uc.MyLoans(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

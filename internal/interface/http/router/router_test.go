package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	appuser "github.com/xiebiao/library-catalog/internal/application/user"
	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	"github.com/xiebiao/library-catalog/internal/domain/stats"
	"github.com/xiebiao/library-catalog/internal/domain/user"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/mysql"
	redisstore "github.com/xiebiao/library-catalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library-catalog/internal/interface/http/handler"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
	"github.com/xiebiao/library-catalog/pkg/jwt"
	"github.com/xiebiao/library-catalog/pkg/mq"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	engine *gin.Engine
	caps   *mysql.CapabilityStore
}

func newServer(t *testing.T) *server {
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

	userRepo := mysql.NewUserRepository(db)
	caps := mysql.NewCapabilityStore(db)
	authorRepo := mysql.NewAuthorRepository(db)
	genreRepo := mysql.NewGenreRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	instanceRepo := mysql.NewInstanceRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	sessions := redisstore.NewSessionStore(client)
	visits := redisstore.NewVisitStore(client, redisstore.DefaultVisitTTL)
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)

	catalogSvc := catalog.NewService(authorRepo, genreRepo, bookRepo, caps)
	instanceSvc := instance.NewService(instanceRepo, bookRepo, userRepo, caps, instance.StrictPolicy())
	reviewSvc := review.NewService(reviewRepo, bookRepo, review.DefaultRating())
	statsSvc := stats.NewService(bookRepo, instanceSvc, reviewSvc, mysql.NewStatsRepository(db))
	userSvc := user.NewService(userRepo, user.WithBcryptCost(bcrypt.MinCost))

	manage := appcatalog.NewManageUseCase(catalogSvc, 3)
	reviews := appcatalog.NewReviewUseCase(reviewSvc)
	loans := apploan.NewUseCase(instanceSvc, mq.NopPublisher{})
	login := appuser.NewLoginUseCase(userSvc, jwtManager, sessions)

	engine, err := New(Options{
		Mode:        gin.TestMode,
		Auth:        middleware.NewAuthMiddleware(jwtManager, sessions),
		RateLimiter: middleware.NewRateLimiter(1000, 1000),
		MetricsPath: "/metrics",
		SessionTTL:  redisstore.DefaultVisitTTL,
	}, Handlers{
		Book: handler.NewBookHandler(
			appcatalog.NewListBooksUseCase(catalogSvc, 10, 3),
			appcatalog.NewBookDetailUseCase(catalogSvc, statsSvc, 3),
			manage, reviews, loans,
		),
		Author:   handler.NewAuthorHandler(appcatalog.NewListAuthorsUseCase(catalogSvc, 10), manage),
		Genre:    handler.NewGenreHandler(appcatalog.NewListGenresUseCase(catalogSvc, 10), manage),
		Instance: handler.NewInstanceHandler(loans),
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userSvc),
			login,
			appuser.NewDeleteUserUseCase(caps, mysql.NewTxManager(db), userRepo, instanceRepo, caps, sessions),
		),
		Summary: handler.NewSummaryHandler(appcatalog.NewSummaryUseCase(statsSvc, visits)),
	})
	require.NoError(t, err)
	return &server{engine: engine, caps: caps}
}

func (s *server) do(t *testing.T, method, path, token string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// signUp 注册并登录，返回用户ID与Access Token
func (s *server) signUp(t *testing.T, email string) (uint, string) {
	t.Helper()
	_, env := s.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"email": email, "password": "Passw0rd123", "nickname": "nick",
	})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]any{
		"email": email, "password": "Passw0rd123",
	})
	require.Equal(t, 0, env.Code, env.Message)

	var resp appuser.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp.User.ID, resp.AccessToken
}

func TestPing(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodGet, "/ping", "", nil)

	w, _ := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestBookFlow(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	librarianID, librarianToken := s.signUp(t, "librarian@example.com")
	readerID, readerToken := s.signUp(t, "reader@example.com")
	require.NoError(t, s.caps.Grant(ctx, librarianID, identity.AllCapabilities()...))

	// 未登录
	_, env := s.do(t, http.MethodPost, "/api/v1/books", "", map[string]any{"title": "Emma", "isbn": "9780141439587"})
	assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)

	// 缺少能力
	_, env = s.do(t, http.MethodPost, "/api/v1/books", readerToken, map[string]any{"title": "Emma", "isbn": "9780141439587"})
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)

	// ISBN不是13位
	_, env = s.do(t, http.MethodPost, "/api/v1/books", librarianToken, map[string]any{"title": "Emma", "isbn": "12345"})
	assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)

	_, env = s.do(t, http.MethodPost, "/api/v1/authors", librarianToken, map[string]any{
		"first_name": "Jane", "last_name": "Austen", "date_of_birth": "1775-12-16",
	})
	require.Equal(t, 0, env.Code, env.Message)
	var author appcatalog.AuthorItem
	require.NoError(t, json.Unmarshal(env.Data, &author))

	_, env = s.do(t, http.MethodPost, "/api/v1/books", librarianToken, map[string]any{
		"title": "Emma", "isbn": "978-0-14-143958-7", "author_id": author.ID, "published_on": "1815-12-23",
	})
	require.Equal(t, 0, env.Code, env.Message)
	var book appcatalog.BookInfo
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Equal(t, "9780141439587", book.ISBN)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Austen, Jane", book.Author.FullName)

	_, env = s.do(t, http.MethodPost, "/api/v1/books", librarianToken, map[string]any{"title": "Copy", "isbn": "9780141439587"})
	assert.Equal(t, apperrors.ErrCodeISBNDuplicate, env.Code)

	// 副本与借阅
	_, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/instances", book.ID), librarianToken, map[string]any{
		"imprint": "Penguin Classics", "status": "available",
	})
	require.Equal(t, 0, env.Code, env.Message)
	var inst apploan.InstanceItem
	require.NoError(t, json.Unmarshal(env.Data, &inst))

	_, env = s.do(t, http.MethodPut, "/api/v1/instances/"+inst.ID+"/status", librarianToken, map[string]any{"status": "lost"})
	assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)

	_, env = s.do(t, http.MethodPost, "/api/v1/instances/"+inst.ID+"/checkout", librarianToken, map[string]any{"borrower_id": readerID})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodPost, "/api/v1/instances/"+inst.ID+"/reserve", librarianToken, map[string]any{"borrower_id": readerID})
	assert.Equal(t, apperrors.ErrCodeInvalidStatusTransition, env.Code)

	_, env = s.do(t, http.MethodGet, "/api/v1/loans/mine", readerToken, nil)
	require.Equal(t, 0, env.Code, env.Message)
	var mine []apploan.InstanceItem
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, inst.ID, mine[0].ID)

	_, env = s.do(t, http.MethodGet, "/api/v1/loans", readerToken, nil)
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)

	// 书评与详情
	_, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", book.ID), readerToken, map[string]any{
		"writer": "reader", "body": "lovely", "stars": 4,
	})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", book.ID), readerToken, map[string]any{
		"writer": "reader", "stars": 9,
	})
	assert.Equal(t, apperrors.ErrCodeInvalidRating, env.Code)

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.ID), "", nil)
	require.Equal(t, 0, env.Code, env.Message)
	var detail appcatalog.BookDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.False(t, detail.HasAvailable)
	assert.Equal(t, 1, detail.TotalCount)
	assert.Equal(t, "4.0", detail.RatingText)

	// 有副本时不能删除
	_, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", book.ID), librarianToken, nil)
	assert.Equal(t, apperrors.ErrCodeBookHasInstances, env.Code)

	_, env = s.do(t, http.MethodGet, "/api/v1/books?page=1&page_size=5", "", nil)
	require.Equal(t, 0, env.Code, env.Message)
	var page appcatalog.PageResult[appcatalog.BookItem]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	_, env = s.do(t, http.MethodGet, "/api/v1/books/abc", "", nil)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
}

func TestGenreUpdateAndDelete(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	librarianID, librarianToken := s.signUp(t, "librarian@example.com")
	_, readerToken := s.signUp(t, "reader@example.com")
	require.NoError(t, s.caps.Grant(ctx, librarianID, identity.AllCapabilities()...))

	_, env := s.do(t, http.MethodPost, "/api/v1/genres", librarianToken, map[string]any{"name": "Romance"})
	require.Equal(t, 0, env.Code, env.Message)
	var genre appcatalog.GenreItem
	require.NoError(t, json.Unmarshal(env.Data, &genre))

	_, env = s.do(t, http.MethodPost, "/api/v1/books", librarianToken, map[string]any{
		"title": "Emma", "isbn": "9780141439587", "genre_ids": []uint{genre.ID},
	})
	require.Equal(t, 0, env.Code, env.Message)
	var book appcatalog.BookInfo
	require.NoError(t, json.Unmarshal(env.Data, &book))

	genrePath := fmt.Sprintf("/api/v1/genres/%d", genre.ID)
	_, env = s.do(t, http.MethodPut, genrePath, readerToken, map[string]any{"name": "Love"})
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)

	_, env = s.do(t, http.MethodPut, genrePath, librarianToken, map[string]any{"name": "Love"})
	require.Equal(t, 0, env.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &genre))
	assert.Equal(t, "Love", genre.Name)

	_, env = s.do(t, http.MethodDelete, genrePath, readerToken, nil)
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	_, env = s.do(t, http.MethodDelete, genrePath, librarianToken, nil)
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodGet, genrePath, "", nil)
	assert.Equal(t, apperrors.ErrCodeGenreNotFound, env.Code)

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.ID), "", nil)
	require.Equal(t, 0, env.Code, env.Message)
	var detail appcatalog.BookDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Empty(t, detail.Book.Genres)
	assert.Equal(t, "Emma", detail.Book.Title)
}

func TestMissingBookIsNotFound(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{
		"/api/v1/books/424242",
		"/api/v1/books/424242/instances",
		"/api/v1/books/424242/reviews",
	} {
		_, env := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, env.Code, path)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp(t, "reader@example.com")

	_, env := s.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]any{
		"email": "reader@example.com", "password": "Passw0rd123",
	})
	require.Equal(t, 0, env.Code, env.Message)
	var login appuser.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	_, env = s.do(t, http.MethodGet, "/api/v1/loans/mine", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodPost, "/api/v1/users/refresh", "", map[string]any{"refresh_token": login.RefreshToken})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	_, env = s.do(t, http.MethodGet, "/api/v1/loans/mine", token, nil)
	assert.Equal(t, apperrors.ErrCodeTokenExpired, env.Code)

	_, env = s.do(t, http.MethodPost, "/api/v1/users/refresh", "", map[string]any{"refresh_token": login.RefreshToken})
	assert.Equal(t, apperrors.ErrCodeInvalidToken, env.Code)
}

func TestSummaryCountsVisitsPerSession(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodGet, "/api/v1/", "", nil)
	require.Equal(t, 0, env.Code, env.Message)
	var summary appcatalog.SummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, int64(1), summary.NumVisits)

	var sid *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			sid = c
		}
	}
	require.NotNil(t, sid)

	_, env = s.do(t, http.MethodGet, "/api/v1/", "", nil, sid)
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, int64(2), summary.NumVisits)

	// 新会话重新计数
	_, env = s.do(t, http.MethodGet, "/api/v1/", "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, int64(1), summary.NumVisits)
}

func TestRateLimiter(t *testing.T) {
	l := middleware.NewRateLimiter(1, 2)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	unlimited := middleware.NewRateLimiter(0, 1)
	for i := 0; i < 10; i++ {
		assert.True(t, unlimited.Allow("10.0.0.1"))
	}
}

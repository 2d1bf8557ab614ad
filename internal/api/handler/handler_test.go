package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/middleware"
)

const (
	testSecret = "test-secret"
	testIssuer = "social-feed"
)

type noopInvalidator struct{}

func (noopInvalidator) Notify(string) {}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Follow{}, &model.Post{},
		&model.Like{}, &model.Comment{}, &model.Notification{},
	))

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	userSvc := service.NewUserService(db, userRepo, followRepo, postRepo, noopInvalidator{})
	postSvc := service.NewPostService(db, postRepo, followRepo, likeRepo, commentRepo, nil, noopInvalidator{})
	notificationSvc := service.NewNotificationService(notificationRepo)

	h := New(userSvc, postSvc, notificationSvc)

	r := gin.New()
	r.Use(middleware.Auth(testSecret, testIssuer))
	v1 := r.Group("/api/v1")
	v1.POST("/users/sync", h.SyncUser)
	v1.GET("/feed", h.Feed)
	v1.POST("/follow/:id", h.ToggleFollow)
	v1.POST("/posts", h.CreatePost)
	return r, db
}

func token(t *testing.T, sub, username, email string) string {
	t.Helper()
	return tokenWithIssuer(t, testIssuer, sub, username, email)
}

func tokenWithIssuer(t *testing.T, iss, sub, username, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":      iss,
		"sub":      sub,
		"username": username,
		"email":    email,
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(r *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnonymousFeedIsEmpty(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodGet, "/api/v1/feed", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int               `json:"code"`
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Code)
	assert.Empty(t, resp.Data)
}

func TestInvalidTokenRejected(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodGet, "/api/v1/feed", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWrongIssuerRejected(t *testing.T) {
	r, _ := setupRouter(t)

	// 签名正确但 iss 不是本服务配置的签发方 → 401
	forged := tokenWithIssuer(t, "someone-else", "ext-alice", "alice", "alice@example.com")
	w := do(r, http.MethodGet, "/api/v1/feed", "", forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	missing := tokenWithIssuer(t, "", "ext-alice", "alice", "alice@example.com")
	w = do(r, http.MethodGet, "/api/v1/feed", "", missing)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncAndToggleFollowOverHTTP(t *testing.T) {
	r, db := setupRouter(t)

	alice := token(t, "ext-alice", "alice", "alice@example.com")
	bob := token(t, "ext-bob", "bob", "bob@example.com")

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/users/sync", "", alice).Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/users/sync", "", bob).Code)

	var bobUser model.User
	require.NoError(t, db.Where("username = ?", "bob").First(&bobUser).Error)

	w := do(r, http.MethodPost, "/api/v1/follow/"+bobUser.ID, "", alice)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "You are now following @bob", res.Message)

	// 对不存在目标的变更返回 success:false 包络，不是 5xx
	w = do(r, http.MethodPost, "/api/v1/follow/no-such-user", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	var fail struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fail))
	assert.False(t, fail.Success)
	assert.NotEmpty(t, fail.Error)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/posts", `{"content":"hello"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

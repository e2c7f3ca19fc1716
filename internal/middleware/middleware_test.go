package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/authz"
	"propertystore/internal/cache"
)

func init() { gin.SetMode(gin.TestMode) }

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func protectedRouter(tokens *authz.Tokens, roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/p", Auth(tokens), RequireRoles(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "role": Role(c)})
	})
	return r
}

func TestAuth_MissingAndInvalidToken(t *testing.T) {
	r := protectedRouter(authz.NewTokens("secret"), authz.RoleRealtor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RolesEnforced(t *testing.T) {
	tokens := authz.NewTokens("secret")
	r := protectedRouter(tokens, authz.RoleRealtor, authz.RoleAdmin)

	staff, _, err := tokens.Issue("u1", authz.RoleRealtor, "anna", time.Hour)
	require.NoError(t, err)
	client, _, err := tokens.Issue("c1", authz.RoleClient, "+7701", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+client)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_QueryTokenFallback(t *testing.T) {
	tokens := authz.NewTokens("secret")
	r := protectedRouter(tokens, authz.RoleRealtor)
	tok, _, _ := tokens.Issue("u1", authz.RoleRealtor, "anna", time.Hour)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p?access_token="+tok, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func idempotentRouter(c cache.Cache, calls *int32, status int) *gin.Engine {
	r := gin.New()
	r.Use(Idempotency(c, time.Minute, quietLog()))
	r.POST("/deals/:id/move", func(ctx *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		ctx.JSON(status, gin.H{"call": n})
	})
	return r
}

func post(r http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/deals/d1/move", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	var calls int32
	r := idempotentRouter(cache.NewMemory(), &calls, http.StatusOK)

	first := post(r, "k1")
	second := post(r, "k1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	post(r, "k2")
	post(r, "")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	var calls int32
	c := cache.NewMemory()
	r := idempotentRouter(c, &calls, http.StatusOK)

	ck := cache.Key("idem", "", http.MethodPost, "/deals/d1/move", "k1")
	ok, err := c.SetNX(t.Context(), ck, []byte(`{"pending":true}`), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	w := post(r, "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestIdempotency_ServerErrorNotRemembered(t *testing.T) {
	var calls int32
	r := idempotentRouter(cache.NewMemory(), &calls, http.StatusInternalServerError)

	post(r, "k1")
	post(r, "k1")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	var calls int32
	r := gin.New()
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, _ any) {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(Idempotency(cache.NewMemory(), time.Minute, quietLog()))
	r.POST("/deals/:id/move", func(ctx *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusInternalServerError, post(r, "k1").Code)
	assert.Equal(t, http.StatusOK, post(r, "k1").Code, "retry is not stuck on the pending marker")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestIdempotency_ReleaseKeepsSiblingKeys(t *testing.T) {
	var calls int32
	c := cache.NewMemory()
	r := idempotentRouter(c, &calls, http.StatusInternalServerError)

	sibling := cache.Key("idem", "", http.MethodPost, "/deals/d1/move", "k10")
	require.NoError(t, c.Set(t.Context(), sibling, []byte(`{"pending":true}`), time.Minute))

	post(r, "k1")
	_, ok, err := c.Get(t.Context(), sibling)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireStaff(t *testing.T) {
	tokens := authz.NewTokens("secret")
	r := gin.New()
	r.GET("/s", Auth(tokens), RequireStaff(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for role, want := range map[string]int{
		authz.RoleAdmin:   http.StatusOK,
		authz.RoleRealtor: http.StatusOK,
		authz.RoleClient:  http.StatusForbidden,
	} {
		tok, _, err := tokens.Issue("x", role, "x", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/s", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

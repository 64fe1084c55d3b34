package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/testutil"
	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuth(testutil.NewUserStore(), "test-secret")
	u := &user.User{ID: "u1", Name: "Ann", Email: "ann@x.com"}

	token, err := auth.Token(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, "ann@x.com", claims.Email)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := NewAuth(testutil.NewUserStore(), "secret-a")
	verifier := NewAuth(testutil.NewUserStore(), "secret-b")

	token, err := issuer.Token(&user.User{ID: "u1", Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireMiddleware(t *testing.T) {
	auth := NewAuth(testutil.NewUserStore(), "test-secret")
	token, err := auth.Token(&user.User{ID: "u1", Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	var gotActor task.UserRef
	handler := auth.Require(func(w http.ResponseWriter, r *http.Request) {
		gotActor = actingUser(r)
		w.WriteHeader(200)
	})

	cases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", 401},
		{"not bearer", "Basic abc", 401},
		{"garbage token", "Bearer not-a-token", 401},
		{"valid token", "Bearer " + token, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, "u1", gotActor.UserID)
}

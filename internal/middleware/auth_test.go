package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
	jwt_internal "github.com/JiggaBS/AutoAndrewProject-sub000/internal/jwt"
)

func TestAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	admin := domain.Principal{Id: "staff-1", Email: "staff@example.com", Role: domain.RoleAdmin}
	tokenAdmin, _ := jwtService.NewToken(admin)
	user := domain.Principal{Id: "cust-1", Email: "cust@example.com", Role: domain.RoleUser}
	token, _ := jwtService.NewToken(user)

	tests := []struct {
		name              string
		adminOnly         bool
		cookie            *http.Cookie
		authHeader        string
		expectedStatus    int
		expectedPrincipal *domain.Principal
	}{
		{
			name:              "Valid token - Admin",
			adminOnly:         true,
			cookie:            &http.Cookie{Name: "accessToken", Value: tokenAdmin},
			expectedStatus:    http.StatusOK,
			expectedPrincipal: &admin,
		},
		{
			name:              "Valid token - Customer",
			adminOnly:         false,
			cookie:            &http.Cookie{Name: "accessToken", Value: token},
			expectedStatus:    http.StatusOK,
			expectedPrincipal: &user,
		},
		{
			name:              "Bearer header instead of cookie",
			adminOnly:         false,
			authHeader:        "Bearer " + token,
			expectedStatus:    http.StatusOK,
			expectedPrincipal: &user,
		},
		{
			name:           "No token",
			adminOnly:      false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid token",
			adminOnly:      false,
			cookie:         &http.Cookie{Name: "accessToken", Value: "invalid_token"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Customer accessing admin route",
			adminOnly:      true,
			cookie:         &http.Cookie{Name: "accessToken", Value: token},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			authMw := NewAuth(jwtService)
			var mw func(http.Handler) http.Handler
			if tt.adminOnly {
				mw = authMw.AdminOnly()
			} else {
				mw = authMw.NeedAuth()
			}
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				p := GetPrincipal(r)
				require.NotNil(t, p, "Auth should always propagate principal thru context")
				if tt.expectedPrincipal != nil {
					assert.Equal(t, tt.expectedPrincipal.Id, p.Id)
					assert.Equal(t, tt.expectedPrincipal.Email, p.Email)
					assert.Equal(t, tt.expectedPrincipal.Role, p.Role)
				}

				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, "handler returned wrong status code")
		})
	}
}

// Package middleware содержит HTTP middleware сервиса магазина.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmeshcher/eshop-system/internal/model"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

// UserResolver возвращает пользователя по email из токена.
type UserResolver interface {
	ResolveUser(ctx context.Context, email string) (*model.User, error)
}

// AuthMiddleware выполняет проверку аутентификации по bearer-токену JWT.
// В токене хранятся email пользователя (sub) и его роль.
type AuthMiddleware struct {
	secretKey []byte
	method    jwt.SigningMethod
	tokenTTL  time.Duration
	resolver  UserResolver
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthMiddleware создаёт AuthMiddleware с указанным секретом, алгоритмом подписи и временем жизни токена.
func NewAuthMiddleware(secret, algorithm string, tokenTTL time.Duration, resolver UserResolver) (*AuthMiddleware, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}

	return &AuthMiddleware{
		secretKey: []byte(secret),
		method:    method,
		tokenTTL:  tokenTTL,
		resolver:  resolver,
	}, nil
}

// IssueToken выпускает подписанный токен для пользователя.
func (a *AuthMiddleware) IssueToken(u *model.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(a.method, claims)
	signed, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Middleware проверяет bearer-токен и добавляет текущего пользователя в контекст запроса.
// Токен с email, который больше не находится в базе, отклоняется.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &tokenClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims,
			func(t *jwt.Token) (any, error) { return a.secretKey, nil },
			jwt.WithValidMethods([]string{a.method.Alg()}),
		)
		if err != nil || !token.Valid || claims.Subject == "" {
			http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
			return
		}

		user, err := a.resolver.ResolveUser(r.Context(), claims.Subject)
		if err != nil {
			http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает только пользователей с ролью администратора.
// Применяется после Middleware.
func (a *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin() {
			http.Error(w, "Not enough permissions", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext извлекает текущего пользователя из контекста запроса.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*model.User)
	return u, ok
}

package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
)

// SessionVerifier は ID プロバイダーが発行したセッショントークンを検証し、
// クレームを取り出します。トークンはセッションクッキーまたは
// Authorization ヘッダーで渡されます。
type SessionVerifier struct {
	secret     []byte
	cookieName string
}

// NewSessionVerifier は SessionVerifier を生成します。
func NewSessionVerifier(secret, cookieName string) *SessionVerifier {
	if cookieName == "" {
		cookieName = "__session"
	}
	return &SessionVerifier{secret: []byte(secret), cookieName: cookieName}
}

// ClaimsFromRequest はリクエストからセッションを解決します。
// セッションが無い、または検証に失敗した場合は ErrUnauthenticated です。
func (v *SessionVerifier) ClaimsFromRequest(r *http.Request) (authz.Claims, error) {
	raw := v.tokenFromRequest(r)
	if raw == "" {
		return authz.Claims{}, authz.ErrUnauthenticated
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return authz.Claims{}, authz.ErrUnauthenticated
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Claims{}, authz.ErrUnauthenticated
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return authz.Claims{}, authz.ErrUnauthenticated
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return authz.Claims{ExternalID: sub, Email: email, Role: role}, nil
}

func (v *SessionVerifier) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(v.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	return ""
}

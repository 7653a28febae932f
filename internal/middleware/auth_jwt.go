package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"marketplace/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
	CtxErrorKey        = "handler_error" // error（ログ用）
)

// アクセストークンから取り出す値
type authClaims struct {
	UserID       int64
	Role         string
	TokenVersion int
}

// AuthJWT はBearerトークン（HS256）を検証し、user_id / role / tv をcontextに入れる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return authJWT(cfg, false)
}

// AuthJWTWebSocket は /ws 用。ブラウザのwebsocketはヘッダを付けられないので ?token= も見る。
// URLに載るのでこのルート以外では使わない
func AuthJWTWebSocket(cfg config.Config) echo.MiddlewareFunc {
	return authJWT(cfg, true)
}

func authJWT(cfg config.Config, allowQuery bool) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(cfg.JWTSecret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c, allowQuery)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			token, err := parser.Parse(raw, keyFunc)
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			claims, err := readClaims(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)
			return next(c)
		}
	}
}

// sub / role / tv はすべて必須
func readClaims(token *jwt.Token) (authClaims, error) {
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authClaims{}, errors.New("unexpected claims type")
	}

	sub, err := claimInt(mc["sub"])
	if err != nil || sub <= 0 {
		return authClaims{}, fmt.Errorf("invalid sub: %v", mc["sub"])
	}
	role, _ := mc["role"].(string)
	if role == "" {
		return authClaims{}, errors.New("missing role")
	}
	tv, err := claimInt(mc["tv"])
	if err != nil || tv < 0 {
		return authClaims{}, fmt.Errorf("invalid tv: %v", mc["tv"])
	}
	return authClaims{UserID: sub, Role: role, TokenVersion: int(tv)}, nil
}

// JSONの数値はfloat64で来る。文字列のsubも受ける
func claimInt(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected claim type %T", v)
	}
}

func bearerToken(c echo.Context, allowQuery bool) (string, bool) {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		if !allowQuery {
			return "", false
		}
		t := strings.TrimSpace(c.QueryParam("token"))
		return t, t != ""
	}

	scheme, t, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	t = strings.TrimSpace(t)
	return t, t != ""
}

// handlerと同じ形 {status:false, message}
type errorResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Status: false, Message: msg}
}

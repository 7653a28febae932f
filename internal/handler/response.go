package handler

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全APIで同じ形 {status, message, data}
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeOK(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, Response{Status: true, Message: msg, Data: data})
}

func writeFail(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{Status: false, Message: msg})
}

// usecaseのエラーをレスポンスに変換する。原因はログ用にcontextへ
func writeError(c echo.Context, err error) error {
	if herr, ok := usecase.AsHTTPError(err); ok {
		if herr.Err != nil {
			c.Set(middleware.CtxErrorKey, herr.Err)
		}
		return writeFail(c, herr.Status, herr.Message)
	}
	var eerr *echo.HTTPError
	if errors.As(err, &eerr) {
		return writeFail(c, eerr.Code, http.StatusText(eerr.Code))
	}
	//sentinelそのもの（ErrUnauthorizedなど）
	if status := usecase.StatusOf(err); status != http.StatusInternalServerError {
		return writeFail(c, status, err.Error())
	}
	c.Set(middleware.CtxErrorKey, err)
	return writeFail(c, http.StatusInternalServerError, "internal error")
}

// AuthJWTが入れた値からActorを作る
func actorFrom(c echo.Context) (usecase.Actor, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return usecase.Actor{}, false
	}
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return usecase.Actor{UserID: id, Role: model.Role(role)}, true
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bind + validate。失敗はusecaseと同じ400
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(dst)
}

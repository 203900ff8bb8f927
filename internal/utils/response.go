package utils

import (
	"errors"
	"net/http"

	"docflow-backend/internal/apperrors"
	"docflow-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.Response{
		Code:    http.StatusOK,
		Message: "ok",
		Data:    data,
	})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, models.Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, models.Response{
		Code:    code,
		Message: message,
	})
}

func ValidationError(c *gin.Context, errs interface{}) {
	c.JSON(http.StatusUnprocessableEntity, models.Response{
		Code:    http.StatusUnprocessableEntity,
		Message: "validation failed",
		Errors:  errs,
	})
}

func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, models.Response{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}
	c.JSON(http.StatusNotFound, models.Response{
		Code:    http.StatusNotFound,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "unauthorized"
	}
	c.JSON(http.StatusUnauthorized, models.Response{
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}

// FromError maps a service error onto the response envelope using the
// apperrors taxonomy. Anything outside the taxonomy is logged and hidden
// behind a generic 500.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		Unauthorized(c, err.Error())
	case errors.Is(err, apperrors.ErrExpiredCredential):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperrors.ErrProvider):
		Error(c, http.StatusBadGateway, err.Error())
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("unhandled service error")
		InternalError(c)
	}
}

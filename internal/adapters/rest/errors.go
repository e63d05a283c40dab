package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/task"
)

// writeError はドメインエラーを HTTP ステータスへ変換して返します。
func writeError(c *gin.Context, err error) {
	status := statusFromError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, task.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, employee.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, employee.ErrIdentityProvider):
		return http.StatusBadGateway
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidPassword),
		errors.Is(err, task.ErrInvalidID),
		errors.Is(err, task.ErrInvalidTitle),
		errors.Is(err, task.ErrInvalidDescription),
		errors.Is(err, task.ErrInvalidAssignee),
		errors.Is(err, task.ErrInvalidDueDate),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidTimeLogged):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

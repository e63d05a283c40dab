package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
)

// SyncHandler はサインイン直後の社員レコード同期を扱います。
type SyncHandler struct {
	employees employee.UseCase
}

// NewSyncHandler は SyncHandler を生成します。
func NewSyncHandler(employees employee.UseCase) *SyncHandler {
	return &SyncHandler{employees: employees}
}

// Sync はセッションの外部 ID に対応する社員レコードを返します。
// レコードが無い場合でも新規作成はしません。社員レコードは管理者による
// 登録でのみ作られます。
func (h *SyncHandler) Sync(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, authz.ErrUnauthenticated)
		return
	}

	found, err := h.employees.SyncSelf(c.Request.Context(), claims.ExternalID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "no employee record for this account, please contact an administrator",
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": toEmployeeJSON(found)})
}

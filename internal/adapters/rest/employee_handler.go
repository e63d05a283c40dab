package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
)

// EmployeeHandler は社員 API のハンドラーです。ルーターが管理者のみに
// 公開します。
type EmployeeHandler struct {
	employees employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(employees employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

type createEmployeeRequest struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Password   string  `json:"password"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

// List は社員の一覧を新しい順で返します。
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.employees.ListEmployees(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": toEmployeeListJSON(employees)})
}

// Create は ID プロバイダーへのアカウント作成を含めて社員を登録します。
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.employees.CreateEmployee(c.Request.Context(), employee.CreateEmployeeInput{
		Email:      req.Email,
		Name:       req.Name,
		Password:   req.Password,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"employee": toEmployeeJSON(created)})
}

// Get は社員を 1 件返します。
func (h *EmployeeHandler) Get(c *gin.Context) {
	found, err := h.employees.GetEmployee(c.Request.Context(), employee.GetEmployeeInput{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": toEmployeeJSON(found)})
}

// Update は社員のプロフィールを更新します。
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.employees.UpdateEmployee(c.Request.Context(), employee.UpdateEmployeeInput{
		ID:         c.Param("id"),
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": toEmployeeJSON(updated)})
}

// Delete は社員と、その社員に割り当てられていたタスクを削除します。
// ID プロバイダー側のアカウント削除に失敗してもローカル削除は行われ、
// 失敗した旨をレスポンスで報告します。
func (h *EmployeeHandler) Delete(c *gin.Context) {
	result, err := h.employees.DeleteEmployee(c.Request.Context(), employee.DeleteEmployeeInput{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}

	message := fmt.Sprintf("employee and %d assigned tasks deleted", result.RemovedTasks)
	if result.ProviderWarning != "" {
		message += "; identity account removal failed: " + result.ProviderWarning
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

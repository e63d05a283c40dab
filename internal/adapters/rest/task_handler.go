package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/task"
)

const dateOnlyLayout = "2006-01-02"

// TaskHandler はタスク API のハンドラーです。ロールごとの可視範囲と
// 許可フィールドの判断はユースケース側で行います。
type TaskHandler struct {
	tasks task.UseCase
}

// NewTaskHandler は TaskHandler を生成します。
func NewTaskHandler(tasks task.UseCase) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  string  `json:"assignedTo"`
	Priority    *string `json:"priority"`
	DueDate     string  `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assignedTo"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	TimeLogged  *int    `json:"timeLogged"`
}

// List は呼び出し元のロールに応じたタスク一覧を返します。
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": toTaskListJSON(tasks)})
}

// Create はタスクを作成します。管理者のみ実行できます。
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		writeError(c, err)
		return
	}

	in := task.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     dueDate,
	}
	if req.Priority != nil {
		priority := task.Priority(*req.Priority)
		in.Priority = &priority
	}

	created, err := h.tasks.CreateTask(c.Request.Context(), callerFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": toTaskJSON(created)})
}

// Get はタスクを 1 件返します。担当社員は自分のタスクのみ参照できます。
func (h *TaskHandler) Get(c *gin.Context) {
	found, err := h.tasks.GetTask(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": toTaskJSON(found)})
}

// Update はタスクを更新します。許可されないフィールドはユースケース側で
// 無視されます。
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := task.UpdateTaskInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		TimeLogged:  req.TimeLogged,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := task.Priority(*req.Priority)
		in.Priority = &priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			writeError(c, err)
			return
		}
		in.DueDate = &dueDate
	}

	updated, err := h.tasks.UpdateTask(c.Request.Context(), callerFrom(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": toTaskJSON(updated)})
}

// Delete はタスクを削除します。管理者のみ実行できます。
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func callerFrom(c *gin.Context) task.Caller {
	claims, _ := claimsFrom(c)
	return task.Caller{ExternalID: claims.ExternalID, Role: roleFrom(c)}
}

// parseDate は RFC 3339 と日付のみの両形式を受け付けます。
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, task.ErrInvalidDueDate
	}
	return parsed, nil
}

package rest

import (
	"time"

	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/task"
)

type employeeJSON struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department *string   `json:"department,omitempty"`
	Position   *string   `json:"position,omitempty"`
	HireDate   time.Time `json:"hireDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type assigneeJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
}

type taskJSON struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	AssignedTo      string        `json:"assignedTo"`
	AssignedToEmail string        `json:"assignedToEmail"`
	Status          string        `json:"status"`
	Priority        string        `json:"priority"`
	DueDate         time.Time     `json:"dueDate"`
	TimeLogged      int           `json:"timeLogged"`
	CreatedBy       string        `json:"createdBy"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Assignee        *assigneeJSON `json:"assignee,omitempty"`
}

func toEmployeeJSON(e *employee.Employee) employeeJSON {
	return employeeJSON{
		ID:         e.ID,
		ExternalID: e.ExternalID,
		Email:      e.Email,
		Name:       e.Name,
		Role:       string(e.Role),
		Department: e.Department,
		Position:   e.Position,
		HireDate:   e.HireDate,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toEmployeeListJSON(employees []*employee.Employee) []employeeJSON {
	out := make([]employeeJSON, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeJSON(e))
	}
	return out
}

func toTaskJSON(t *task.Task) taskJSON {
	out := taskJSON{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		AssignedTo:      t.AssignedTo,
		AssignedToEmail: t.AssignedToEmail,
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		DueDate:         t.DueDate,
		TimeLogged:      t.TimeLogged,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Assignee != nil {
		out.Assignee = &assigneeJSON{
			ID:         t.Assignee.ID,
			Name:       t.Assignee.Name,
			Email:      t.Assignee.Email,
			Department: t.Assignee.Department,
		}
	}
	return out
}

func toTaskListJSON(tasks []*task.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}
	return out
}

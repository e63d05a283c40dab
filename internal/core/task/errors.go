package task

import "errors"

var (
	ErrInvalidID          = errors.New("task: invalid id")
	ErrInvalidTitle       = errors.New("task: invalid title")
	ErrInvalidDescription = errors.New("task: invalid description")
	ErrInvalidAssignee    = errors.New("task: invalid assignee")
	ErrInvalidDueDate     = errors.New("task: invalid due date")
	ErrInvalidStatus      = errors.New("task: invalid status")
	ErrInvalidPriority    = errors.New("task: invalid priority")
	ErrInvalidTimeLogged  = errors.New("task: invalid time logged")
	ErrTaskNotFound       = errors.New("task: not found")
	ErrEmployeeNotFound   = errors.New("task: employee not found")
)

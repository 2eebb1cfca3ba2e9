package domain

// TaskStatus is the server-owned lifecycle state of a scheduled task.
// The client mirrors it and never advances it locally.
type TaskStatus string

const (
	TaskStatusScheduled  TaskStatus = "scheduled"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusPaused     TaskStatus = "paused"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusDelayed    TaskStatus = "delayed"
)

func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusScheduled  OrderStatus = "scheduled"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type JobLogStatus string

const (
	JobLogStatusPending    JobLogStatus = "pending"
	JobLogStatusScheduled  JobLogStatus = "scheduled"
	JobLogStatusInProgress JobLogStatus = "in_progress"
	JobLogStatusPaused     JobLogStatus = "paused"
	JobLogStatusCompleted  JobLogStatus = "completed"
	JobLogStatusFailed     JobLogStatus = "failed"
	JobLogStatusAborted    JobLogStatus = "aborted"
)

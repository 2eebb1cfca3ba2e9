package domain

import (
	"shopfloor-console/internal/infra/utils"
)

// Machine is a physical machine or workstation on the shop floor.
type Machine struct {
	ID                   ID     `json:"id"`
	MachineIDCode        string `json:"machine_id_code"`
	MachineType          string `json:"machine_type"`
	DefaultSetupTimeMins int    `json:"default_setup_time_mins"`
	IsActive             bool   `json:"is_active"`
}

// ProcessStep is one step of a product's process route. It names what has
// to be done and on which machine type, not a specific machine.
type ProcessStep struct {
	ID                      ID     `json:"id"`
	ProductRouteID          string `json:"product_route_id"`
	StepNumber              int    `json:"step_number"`
	StepName                string `json:"step_name"`
	RequiredMachineType     string `json:"required_machine_type"`
	BaseDurationPerUnitMins int    `json:"base_duration_per_unit_mins"`
}

// ProductionOrder is the demand that drives scheduling.
type ProductionOrder struct {
	ID                ID          `json:"id"`
	OrderIDCode       string      `json:"order_id_code"`
	ProductName       string      `json:"product_name"`
	ProductRouteID    string      `json:"product_route_id"`
	QuantityToProduce int         `json:"quantity_to_produce"`
	Priority          int         `json:"priority"`
	ArrivalTime       utils.Time  `json:"arrival_time"`
	DueDate           *utils.Time `json:"due_date,omitempty"`
	CurrentStatus     OrderStatus `json:"current_status"`
	Progress          float64     `json:"progress"`
}

// ScheduledTask is one process step of one order planned on one machine.
// The scheduler owns its time window; operators own its status transitions.
type ScheduledTask struct {
	ID                    ID         `json:"id"`
	ProductionOrderID     ID         `json:"production_order_id"`
	ProcessStepID         ID         `json:"process_step_id"`
	AssignedMachineID     ID         `json:"assigned_machine_id"`
	StartTime             utils.Time `json:"start_time"`
	EndTime               utils.Time `json:"end_time"`
	ScheduledDurationMins int        `json:"scheduled_duration_mins"`
	Status                TaskStatus `json:"status"`
	JobIDCode             string     `json:"job_id_code,omitempty"`
	StepNumber            int        `json:"step_number,omitempty"`
}

type DowntimeEvent struct {
	ID        ID         `json:"id"`
	MachineID ID         `json:"machine_id"`
	StartTime utils.Time `json:"start_time"`
	EndTime   utils.Time `json:"end_time"`
	Reason    string     `json:"reason"`
}

type JobLog struct {
	ID                ID           `json:"id"`
	ProductionOrderID ID           `json:"production_order_id"`
	ProcessStepID     ID           `json:"process_step_id"`
	MachineID         ID           `json:"machine_id"`
	ActualStartTime   utils.Time   `json:"actual_start_time"`
	ActualEndTime     *utils.Time  `json:"actual_end_time,omitempty"`
	Status            JobLogStatus `json:"status"`
	Remarks           string       `json:"remarks,omitempty"`
}

type User struct {
	ID      ID     `json:"id"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

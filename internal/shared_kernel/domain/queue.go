package domain

// OperatorJob is the kiosk-facing projection of a scheduled task joined
// with its production order.
type OperatorJob struct {
	ID          ID         `json:"id"`
	JobCode     string     `json:"job_code"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	Priority    int        `json:"priority"`
	StepName    string     `json:"step_name"`
	Status      TaskStatus `json:"status"`
}

// WaitingInfo names the predecessor step that keeps the next job from
// starting, and where that step currently stands.
type WaitingInfo struct {
	StepName string     `json:"step_name"`
	Status   TaskStatus `json:"status"`
}

// MachineQueue is the per-machine operator view: the running job, the job
// queued behind it, and whether the next job may start. This is the richer
// of the two queue shapes the upstream has carried and is treated as
// authoritative.
type MachineQueue struct {
	MachineIDCode      string       `json:"machine_id_code"`
	MachineName        string       `json:"machine_name"`
	CurrentJob         *OperatorJob `json:"current_job"`
	NextTaskInSequence *OperatorJob `json:"next_task_in_sequence"`
	IsNextTaskReady    bool         `json:"is_next_task_ready"`
	WaitingFor         *WaitingInfo `json:"waiting_for,omitempty"`
}

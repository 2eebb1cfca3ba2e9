// Package stub emulates the scheduling backend so the console can be
// exercised end to end without a real deployment.
package stub

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	shared "shopfloor-console/internal/shared_kernel/domain"
)

type Backend struct {
	mu       sync.Mutex
	server   *httptest.Server
	queues   map[string]*shared.MachineQueue
	machines []shared.Machine
	nextID   shared.ID
}

func NewBackend() *Backend {
	b := &Backend{
		queues: make(map[string]*shared.MachineQueue),
		nextID: 100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", b.login)
	mux.HandleFunc("GET /api/operators/{code}/queue", b.operatorQueue)
	mux.HandleFunc("POST /api/scheduled-tasks/{id}/{action}", b.taskAction)
	mux.HandleFunc("GET /api/machines/", b.listMachines)
	mux.HandleFunc("DELETE /api/machines/{id}", b.deleteMachine)

	b.server = httptest.NewServer(mux)
	return b
}

func (b *Backend) URL() string { return b.server.URL }

func (b *Backend) Close() { b.server.Close() }

// SetQueueReady arranges the machine's queue so the named job is next in
// sequence and may start.
func (b *Backend) SetQueueReady(machine, jobCode string) shared.ID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocateID()
	b.queues[machine] = &shared.MachineQueue{
		MachineIDCode: machine,
		MachineName:   machine,
		NextTaskInSequence: &shared.OperatorJob{
			ID:      id,
			JobCode: jobCode,
			Status:  shared.TaskStatusScheduled,
		},
		IsNextTaskReady: true,
	}
	return id
}

// SetQueueWaiting arranges the machine's queue so the named job exists but
// its predecessor step has not finished.
func (b *Backend) SetQueueWaiting(machine, jobCode, waitingStep string) shared.ID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocateID()
	b.queues[machine] = &shared.MachineQueue{
		MachineIDCode: machine,
		MachineName:   machine,
		NextTaskInSequence: &shared.OperatorJob{
			ID:      id,
			JobCode: jobCode,
			Status:  shared.TaskStatusScheduled,
		},
		IsNextTaskReady: false,
		WaitingFor: &shared.WaitingInfo{
			StepName: waitingStep,
			Status:   shared.TaskStatusInProgress,
		},
	}
	return id
}

// SetQueueRunning arranges the machine's queue so the named job is already
// in progress.
func (b *Backend) SetQueueRunning(machine, jobCode string) shared.ID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocateID()
	b.queues[machine] = &shared.MachineQueue{
		MachineIDCode: machine,
		MachineName:   machine,
		CurrentJob: &shared.OperatorJob{
			ID:      id,
			JobCode: jobCode,
			Status:  shared.TaskStatusInProgress,
		},
	}
	return id
}

// SetMachines replaces the machine collection.
func (b *Backend) SetMachines(codes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.machines = nil
	for i, code := range codes {
		b.machines = append(b.machines, shared.Machine{
			ID:            shared.ID(i + 1),
			MachineIDCode: code,
			MachineType:   "VMC",
			IsActive:      true,
		})
	}
}

// MachineID looks up the stub's id for a machine code.
func (b *Backend) MachineID(code string) (shared.ID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, machine := range b.machines {
		if machine.MachineIDCode == code {
			return machine.ID, true
		}
	}
	return 0, false
}

func (b *Backend) allocateID() shared.ID {
	b.nextID++
	return b.nextID
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		replyJSON(w, http.StatusUnauthorized, map[string]any{"detail": "invalid credentials"})
		return
	}

	replyJSON(w, http.StatusOK, map[string]any{
		"access_token": tokenFor(body.Email, "admin"),
		"token_type":   "bearer",
	})
}

func (b *Backend) operatorQueue(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	code := r.PathValue("code")
	queue, found := b.queues[code]
	if !found {
		replyJSON(w, http.StatusOK, shared.MachineQueue{MachineIDCode: code, MachineName: code})
		return
	}

	replyJSON(w, http.StatusOK, queue)
}

func (b *Backend) taskAction(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		replyJSON(w, http.StatusNotFound, map[string]any{"detail": "task not found"})
		return
	}
	action := r.PathValue("action")

	for _, queue := range b.queues {
		switch {
		case queue.NextTaskInSequence != nil && queue.NextTaskInSequence.ID == shared.ID(id):
			if action != "start" {
				replyJSON(w, http.StatusConflict, map[string]any{"detail": "task has not started"})
				return
			}
			job := *queue.NextTaskInSequence
			job.Status = shared.TaskStatusInProgress
			queue.CurrentJob = &job
			queue.NextTaskInSequence = nil
			queue.IsNextTaskReady = false
			replyJSON(w, http.StatusOK, map[string]any{"status": "ok"})
			return
		case queue.CurrentJob != nil && queue.CurrentJob.ID == shared.ID(id):
			switch action {
			case "start":
				queue.CurrentJob.Status = shared.TaskStatusInProgress
			case "pause":
				queue.CurrentJob.Status = shared.TaskStatusPaused
			case "report-issue":
				queue.CurrentJob.Status = shared.TaskStatusBlocked
			case "finish", "cancel":
				queue.CurrentJob = nil
			default:
				replyJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "unknown action"})
				return
			}
			replyJSON(w, http.StatusOK, map[string]any{"status": "ok"})
			return
		}
	}

	replyJSON(w, http.StatusNotFound, map[string]any{"detail": "task not found"})
}

func (b *Backend) listMachines(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	machines := b.machines
	if machines == nil {
		machines = []shared.Machine{}
	}
	replyJSON(w, http.StatusOK, machines)
}

func (b *Backend) deleteMachine(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		replyJSON(w, http.StatusNotFound, map[string]any{"detail": "machine not found"})
		return
	}

	var kept []shared.Machine
	for _, machine := range b.machines {
		if machine.ID != shared.ID(id) {
			kept = append(kept, machine)
		}
	}
	b.machines = kept
	w.WriteHeader(http.StatusNoContent)
}

func tokenFor(subject, role string) string {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	payload := fmt.Sprintf(`{"sub":%q,"role":%q,"exp":4102444800}`, subject, role)
	return fmt.Sprintf("%s.%s.%s", encode(`{"alg":"HS256"}`), encode(payload), encode("sig"))
}

func replyJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

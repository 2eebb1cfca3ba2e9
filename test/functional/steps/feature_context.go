package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"shopfloor-console/internal/infra/cache"
	"shopfloor-console/test/functional/driver"
	"shopfloor-console/test/functional/stub"

	"github.com/cucumber/godog"
)

type queueSnapshot struct {
	Queue struct {
		MachineIDCode string `json:"machine_id_code"`
		CurrentJob    *struct {
			ID      int64  `json:"id"`
			JobCode string `json:"job_code"`
			Status  string `json:"status"`
		} `json:"current_job"`
		NextTaskInSequence *struct {
			ID      int64  `json:"id"`
			JobCode string `json:"job_code"`
			Status  string `json:"status"`
		} `json:"next_task_in_sequence"`
	} `json:"queue"`
	State          string   `json:"state"`
	AllowedActions []string `json:"allowed_actions"`
}

type FeatureContext struct {
	apiDriver  *driver.APIDriver
	backend    *stub.Backend
	queryCache cache.Cache

	response *http.Response
	snapshot *queueSnapshot
	taskIDs  map[string]int64
	machines []map[string]any
}

func NewFeatureContext(apiDriver *driver.APIDriver, backend *stub.Backend, queryCache cache.Cache) *FeatureContext {
	return &FeatureContext{
		apiDriver:  apiDriver,
		backend:    backend,
		queryCache: queryCache,
		taskIDs:    make(map[string]int64),
	}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	ctx.Given(`^the operator is logged in$`, fc.theOperatorIsLoggedIn)
	ctx.Given(`^machine "([^"]*)" has job "([^"]*)" ready to start$`, fc.machineHasJobReadyToStart)
	ctx.Given(`^machine "([^"]*)" has job "([^"]*)" waiting on step "([^"]*)"$`, fc.machineHasJobWaitingOnStep)
	ctx.Given(`^machine "([^"]*)" has job "([^"]*)" running$`, fc.machineHasJobRunning)
	ctx.Given(`^the backend knows machines "([^"]*)" and "([^"]*)"$`, fc.theBackendKnowsMachines)

	ctx.When(`^I fetch the queue for machine "([^"]*)"$`, fc.iFetchTheQueueForMachine)
	ctx.When(`^I perform "([^"]*)" on the displayed task for machine "([^"]*)"$`, fc.iPerformOnTheDisplayedTask)
	ctx.When(`^I report issue "([^"]*)" on the displayed task for machine "([^"]*)"$`, fc.iReportIssueOnTheDisplayedTask)
	ctx.When(`^I delete machine "([^"]*)" without confirming$`, fc.iDeleteMachineWithoutConfirming)
	ctx.When(`^I delete machine "([^"]*)" with confirmation$`, fc.iDeleteMachineWithConfirmation)

	ctx.Then(`^the response status code should be (\d+)$`, fc.theResponseStatusCodeShouldBe)
	ctx.Then(`^the queue state should be "([^"]*)"$`, fc.theQueueStateShouldBe)
	ctx.Then(`^the allowed actions should include "([^"]*)"$`, fc.theAllowedActionsShouldInclude)
	ctx.Then(`^no actions should be allowed$`, fc.noActionsShouldBeAllowed)
	ctx.Then(`^the machine list should still contain "([^"]*)"$`, fc.theMachineListShouldContain)
	ctx.Then(`^the machine list should not contain "([^"]*)"$`, fc.theMachineListShouldNotContain)
}

func (fc *FeatureContext) theOperatorIsLoggedIn() error {
	resp, err := fc.apiDriver.Login("edu@example.com", "secret")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	return nil
}

func (fc *FeatureContext) machineHasJobReadyToStart(machine, jobCode string) error {
	id := fc.backend.SetQueueReady(machine, jobCode)
	fc.taskIDs[machine] = int64(id)
	fc.queryCache.Delete(context.Background(), cache.KeyOperatorQueue(machine))
	return nil
}

func (fc *FeatureContext) machineHasJobWaitingOnStep(machine, jobCode, step string) error {
	id := fc.backend.SetQueueWaiting(machine, jobCode, step)
	fc.taskIDs[machine] = int64(id)
	fc.queryCache.Delete(context.Background(), cache.KeyOperatorQueue(machine))
	return nil
}

func (fc *FeatureContext) machineHasJobRunning(machine, jobCode string) error {
	id := fc.backend.SetQueueRunning(machine, jobCode)
	fc.taskIDs[machine] = int64(id)
	fc.queryCache.Delete(context.Background(), cache.KeyOperatorQueue(machine))
	return nil
}

func (fc *FeatureContext) theBackendKnowsMachines(first, second string) error {
	fc.backend.SetMachines(first, second)
	fc.queryCache.Delete(context.Background(), cache.KeyMachines)
	return nil
}

func (fc *FeatureContext) iFetchTheQueueForMachine(machine string) error {
	resp, err := fc.apiDriver.GetQueue(machine)
	if err != nil {
		return err
	}
	return fc.captureSnapshot(resp)
}

func (fc *FeatureContext) iPerformOnTheDisplayedTask(action, machine string) error {
	taskID, found := fc.taskIDs[machine]
	if !found {
		return fmt.Errorf("no task arranged for machine %s", machine)
	}

	resp, err := fc.apiDriver.PerformTaskAction(taskID, action, machine, "")
	if err != nil {
		return err
	}
	return fc.captureSnapshot(resp)
}

func (fc *FeatureContext) iReportIssueOnTheDisplayedTask(reason, machine string) error {
	taskID, found := fc.taskIDs[machine]
	if !found {
		return fmt.Errorf("no task arranged for machine %s", machine)
	}

	resp, err := fc.apiDriver.PerformTaskAction(taskID, "report-issue", machine, reason)
	if err != nil {
		return err
	}
	return fc.captureSnapshot(resp)
}

func (fc *FeatureContext) iDeleteMachineWithoutConfirming(code string) error {
	return fc.deleteMachine(code, false)
}

func (fc *FeatureContext) iDeleteMachineWithConfirmation(code string) error {
	return fc.deleteMachine(code, true)
}

func (fc *FeatureContext) deleteMachine(code string, confirmed bool) error {
	id, found := fc.backend.MachineID(code)
	if !found {
		return fmt.Errorf("stub backend does not know machine %s", code)
	}

	resp, err := fc.apiDriver.DeleteMachine(int64(id), confirmed)
	if err != nil {
		return err
	}
	fc.response = resp
	fc.snapshot = nil
	return nil
}

func (fc *FeatureContext) theResponseStatusCodeShouldBe(code int) error {
	if fc.response == nil {
		return fmt.Errorf("no response captured")
	}
	if fc.response.StatusCode != code {
		return fmt.Errorf("expected status %d, got %d", code, fc.response.StatusCode)
	}
	return nil
}

func (fc *FeatureContext) theQueueStateShouldBe(state string) error {
	if fc.snapshot == nil {
		return fmt.Errorf("no queue snapshot captured")
	}
	if fc.snapshot.State != state {
		return fmt.Errorf("expected queue state %s, got %s", state, fc.snapshot.State)
	}
	return nil
}

func (fc *FeatureContext) theAllowedActionsShouldInclude(action string) error {
	if fc.snapshot == nil {
		return fmt.Errorf("no queue snapshot captured")
	}
	for _, allowed := range fc.snapshot.AllowedActions {
		if allowed == action {
			return nil
		}
	}
	return fmt.Errorf("action %s not in allowed set %v", action, fc.snapshot.AllowedActions)
}

func (fc *FeatureContext) noActionsShouldBeAllowed() error {
	if fc.snapshot == nil {
		return fmt.Errorf("no queue snapshot captured")
	}
	if len(fc.snapshot.AllowedActions) != 0 {
		return fmt.Errorf("expected no allowed actions, got %v", fc.snapshot.AllowedActions)
	}
	return nil
}

func (fc *FeatureContext) theMachineListShouldContain(code string) error {
	found, err := fc.machineListed(code)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("machine %s missing from list", code)
	}
	return nil
}

func (fc *FeatureContext) theMachineListShouldNotContain(code string) error {
	found, err := fc.machineListed(code)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("machine %s still listed", code)
	}
	return nil
}

func (fc *FeatureContext) machineListed(code string) (bool, error) {
	resp, err := fc.apiDriver.ListMachines()
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("listing machines failed with status %d", resp.StatusCode)
	}

	var machines []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&machines); err != nil {
		return false, err
	}
	fc.machines = machines

	for _, machine := range machines {
		if machine["machine_id_code"] == code {
			return true, nil
		}
	}
	return false, nil
}

// captureSnapshot records the response and, when the body carries a queue
// snapshot, keeps the parsed snapshot for the Then steps.
func (fc *FeatureContext) captureSnapshot(resp *http.Response) error {
	fc.response = resp
	fc.snapshot = nil

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil
	}

	defer resp.Body.Close()
	var snapshot queueSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return err
	}
	fc.snapshot = &snapshot
	return nil
}

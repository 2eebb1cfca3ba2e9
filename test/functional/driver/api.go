package driver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type APIDriver struct {
	baseURL string
	client  *http.Client
}

func NewAPIDriver(baseURL string) *APIDriver {
	return &APIDriver{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (d *APIDriver) Login(email, password string) (*http.Response, error) {
	reqBody, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		panic(err)
	}
	return d.client.Post(fmt.Sprintf("%s/v1/auth/login", d.baseURL), "application/json", bytes.NewBuffer(reqBody))
}

func (d *APIDriver) GetQueue(machineIDCode string) (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/v1/operators/%s/queue", d.baseURL, machineIDCode))
}

func (d *APIDriver) PerformTaskAction(taskID int64, action, machineIDCode, reason string) (*http.Response, error) {
	body := map[string]any{"machine_id_code": machineIDCode}
	if reason != "" {
		body["reason"] = reason
	}
	reqBody, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return d.client.Post(fmt.Sprintf("%s/v1/operators/tasks/%d/%s", d.baseURL, taskID, action), "application/json", bytes.NewBuffer(reqBody))
}

func (d *APIDriver) ListMachines() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/v1/machines", d.baseURL))
}

func (d *APIDriver) DeleteMachine(id int64, confirmed bool) (*http.Response, error) {
	url := fmt.Sprintf("%s/v1/machines/%d", d.baseURL, id)
	if confirmed {
		url += "?confirm=true"
	}
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		panic(err)
	}
	return d.client.Do(req)
}

func (d *APIDriver) GetHealthz() (*http.Response, error) {
	return d.client.Get(fmt.Sprintf("%s/healthz", d.baseURL))
}

package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/sql"
	shared "shopfloor-console/internal/shared_kernel/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roleToken(role string) string {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	payload := fmt.Sprintf(`{"sub":"tester","role":%q,"exp":4102444800}`, role)
	return fmt.Sprintf("%s.%s.%s", encode(`{"alg":"HS256"}`), encode(payload), encode("sig"))
}

func sessionsWithRole(t *testing.T, role string) *auth.Manager {
	t.Helper()

	orm, err := sql.NewMemoryORM()
	require.NoError(t, err)
	store, err := auth.NewStore(orm)
	require.NoError(t, err)

	sessions := auth.NewManager(store)
	if role != "" {
		require.NoError(t, sessions.SetToken(context.Background(), roleToken(role)))
	}
	return sessions
}

type fakeMachineService struct {
	machines []shared.Machine
	deleted  []shared.ID
	err      error
}

func (s *fakeMachineService) List(_ context.Context) ([]shared.Machine, error) {
	return s.machines, s.err
}

func (s *fakeMachineService) Create(_ context.Context, in backend.MachineRequest) (shared.Machine, error) {
	if s.err != nil {
		return shared.Machine{}, s.err
	}
	return shared.Machine{ID: 99, MachineIDCode: in.MachineIDCode}, nil
}

func (s *fakeMachineService) Update(_ context.Context, id shared.ID, in backend.MachineRequest) (shared.Machine, error) {
	return shared.Machine{ID: id, MachineIDCode: in.MachineIDCode}, s.err
}

func (s *fakeMachineService) Delete(_ context.Context, id shared.ID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeMachineService) Import(_ context.Context, _ string, _ io.Reader) (backend.ImportResult, error) {
	return backend.ImportResult{Inserted: 2}, s.err
}

func machineServer(t *testing.T, role string, service usecases.MachineService) *httptest.Server {
	t.Helper()

	controller := NewMachineController(sessionsWithRole(t, role), service)
	router := http.NewServeMux()
	controller.AddRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestListMachines(t *testing.T) {
	service := &fakeMachineService{machines: []shared.Machine{{ID: 12, MachineIDCode: "M-12"}}}
	server := machineServer(t, "operator", service)

	resp, err := http.Get(server.URL + "/v1/machines")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var machines []shared.Machine
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&machines))
	require.Len(t, machines, 1)
	assert.Equal(t, "M-12", machines[0].MachineIDCode)
}

func TestDeleteMachineRequiresConfirmation(t *testing.T) {
	service := &fakeMachineService{}
	server := machineServer(t, "admin", service)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/v1/machines/12", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Empty(t, service.deleted)
}

func TestDeleteMachineConfirmed(t *testing.T) {
	service := &fakeMachineService{}
	server := machineServer(t, "admin", service)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/v1/machines/12?confirm=true", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []shared.ID{12}, service.deleted)
}

func TestCreateMachineRoleGate(t *testing.T) {
	server := machineServer(t, "operator", &fakeMachineService{})

	resp, err := http.Post(server.URL+"/v1/machines", "application/json",
		strings.NewReader(`{"machine_id_code":"M-1","machine_type":"VMC"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateMachineUnauthenticated(t *testing.T) {
	server := machineServer(t, "", &fakeMachineService{})

	resp, err := http.Post(server.URL+"/v1/machines", "application/json",
		strings.NewReader(`{"machine_id_code":"M-1","machine_type":"VMC"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateMachineValidationError(t *testing.T) {
	service := &fakeMachineService{err: usecases.ErrValidation}
	server := machineServer(t, "manager", service)

	resp, err := http.Post(server.URL+"/v1/machines", "application/json",
		strings.NewReader(`{"machine_type":"VMC"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteMachineUpstreamConflict(t *testing.T) {
	service := &fakeMachineService{err: &backend.APIError{StatusCode: http.StatusConflict, Detail: "machine has downtime events"}}
	server := machineServer(t, "admin", service)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/v1/machines/12?confirm=true", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

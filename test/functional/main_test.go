package functional

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	adminhttp "shopfloor-console/internal/adminops/httpapi"
	adminusecases "shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	"shopfloor-console/internal/infra/sql"
	floorhttp "shopfloor-console/internal/shopfloor/httpapi"
	floorusecases "shopfloor-console/internal/shopfloor/usecases"
	"shopfloor-console/test/functional/driver"
	"shopfloor-console/test/functional/steps"
	"shopfloor-console/test/functional/stub"

	"github.com/cucumber/godog"
	"github.com/spf13/pflag"
)

var opts = godog.Options{
	Paths: []string{"features"},
}

func init() {
	godog.BindCommandLineFlags("godog.", &opts)
}

func TestMain(m *testing.M) {
	pflag.Parse()

	upstream := stub.NewBackend()
	defer upstream.Close()

	console, queryCache, err := startConsole(upstream.URL())
	if err != nil {
		fmt.Fprintln(os.Stderr, "starting console:", err)
		os.Exit(1)
	}
	defer console.Close()

	featureContext := steps.NewFeatureContext(
		driver.NewAPIDriver(console.URL),
		upstream,
		queryCache,
	)

	status := godog.TestSuite{
		Name:                 "godogs",
		TestSuiteInitializer: InitializeTestSuite,
		ScenarioInitializer:  featureContext.RegisterSteps,
		Options:              &opts,
	}.Run()

	if st := m.Run(); st > status {
		status = st
	}

	os.Exit(status)
}

func InitializeTestSuite(suite *godog.TestSuiteContext) {
	suite.BeforeSuite(func() {
		fmt.Println("Before suite")
	})
}

// startConsole wires the console against the stub upstream, the same
// composition cmd/console performs, minus the workers.
func startConsole(upstreamURL string) (*httptest.Server, cache.Cache, error) {
	orm, err := sql.NewMemoryORM()
	if err != nil {
		return nil, nil, err
	}

	sessionStore, err := auth.NewStore(orm)
	if err != nil {
		return nil, nil, err
	}
	sessions := auth.NewManager(sessionStore)

	client := backend.NewClient(backend.ClientOpts{
		BaseURL:  upstreamURL,
		Sessions: sessions,
	})

	queryCache, err := cache.New(cache.DefaultConfig())
	if err != nil {
		return nil, nil, err
	}

	journal, err := floorusecases.NewJournal(orm)
	if err != nil {
		return nil, nil, err
	}

	queueService := floorusecases.NewQueueService(client, queryCache)
	actionService := floorusecases.NewTaskActionService(client, queueService, journal)
	machineService := adminusecases.NewMachineService(client, queryCache)

	router := http.NewServeMux()
	adminhttp.NewAuthController(sessions, client).AddRoutes(router)
	adminhttp.NewMachineController(sessions, machineService).AddRoutes(router)
	floorhttp.NewOperatorController(sessions, queueService, actionService, journal).AddRoutes(router)

	return httptest.NewServer(router), queryCache, nil
}

package httpserver

import "net/http"

// Controller registers one resource's routes on the console's router.
type Controller interface {
	AddRoutes(*http.ServeMux)
}

package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Data is the payload for the health endpoint.
type Data struct {
	Status  string `json:"status" doc:"Liveness status" example:"healthy"`
	Version string `json:"version" doc:"Build version" example:"1.0.0"`
}

// Output wraps Data as the response body.
type Output struct {
	Body Data
}

// Register adds GET /health for the platform liveness and readiness probes.
func Register(api huma.API, version string) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
	}, func(context.Context, *struct{}) (*Output, error) {
		return &Output{Body: Data{Status: "healthy", Version: version}}, nil
	})
}

package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/pipeline-responder/internal/http/health"
	"github.com/janisto/pipeline-responder/internal/http/responder"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API, msgs responder.Messages, version string) {
	health.Register(api, version)
	responder.Register(api, msgs)
}

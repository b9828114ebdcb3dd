package responder

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/pipeline-responder/internal/platform/logging"
)

// Register binds GET / and GET /hello to handlers that return msgs verbatim.
// The bodies are copied once here; nothing can change them afterwards.
func Register(api huma.API, msgs Messages) {
	root := []byte(msgs.Root)
	hello := []byte(msgs.Hello)

	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Report that the application is running",
		Tags:        []string{"Responder"},
		Responses:   textResponses(),
	}, constantHandler("root", "/", root))

	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        "/hello",
		Summary:     "Return the hello message",
		Tags:        []string{"Responder"},
		Responses:   textResponses(),
	}, constantHandler("hello", "/hello", hello))
}

// constantHandler ignores its input and always answers with body.
func constantHandler(name, path string, body []byte) func(context.Context, *struct{}) (*TextOutput, error) {
	return func(ctx context.Context, _ *struct{}) (*TextOutput, error) {
		applog.LogInfo(ctx, name+" get", zap.String("path", path))
		return newTextOutput(body), nil
	}
}

func textResponses() map[string]*huma.Response {
	return map[string]*huma.Response{
		"200": {
			Description: "Fixed text message",
			Content: map[string]*huma.MediaType{
				"text/plain": {Schema: &huma.Schema{Type: huma.TypeString}},
			},
		},
	}
}

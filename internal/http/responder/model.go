package responder

const (
	// DefaultRootMessage is served on GET / unless overridden at deploy time.
	DefaultRootMessage = "App is running!"
	// DefaultHelloMessage is served on GET /hello unless overridden at deploy time.
	DefaultHelloMessage = "Openshift Pipe Line Testing"
)

// Messages holds the fixed response bodies for the two routes.
type Messages struct {
	Root  string
	Hello string
}

// DefaultMessages returns the built-in response bodies.
func DefaultMessages() Messages {
	return Messages{Root: DefaultRootMessage, Hello: DefaultHelloMessage}
}

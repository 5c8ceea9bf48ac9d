package domain

// Task describes a named remote operation.
//
// The engine resolves tasks by name and passes them to the TaskRunner; it
// never interprets Command itself.
type Task struct {
	// Name is the well-known task name (see constants.go).
	Name string

	// Params is the accepted parameter schema: argument name -> required.
	// Arguments outside this schema are a validation error.
	Params map[string]bool

	// Command is an opaque executable descriptor for the runner.
	// The SSH runner treats it as a shell command emitting a JSON object.
	Command string
}

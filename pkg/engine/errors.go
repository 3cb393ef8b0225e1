package engine

// SerializationError reports a malformed or undecodable engine snapshot. No
// partial engine is ever returned alongside it.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return "engine snapshot: " + e.Err.Error() }

func (e *SerializationError) Unwrap() error { return e.Err }

// TypeResolutionError reports that a snapshot references a type name that
// cannot be located in the current process - the component set loaded here
// does not match the one that wrote the snapshot.
type TypeResolutionError struct {
	Name string
}

func (e *TypeResolutionError) Error() string { return "cannot resolve type " + e.Name }

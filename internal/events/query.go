package events

import "time"

// QueryStart is emitted before executing an operation.
type QueryStart struct {
	Query         string
	OperationName string
	OperationType string
}

// QueryFinish is emitted after executing an operation.
type QueryFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// FieldResolve is emitted after a registered fetcher resolves one field.
// Fields resolved by the default property lookup do not emit.
type FieldResolve struct {
	Type     string
	Field    string
	Err      error
	Duration time.Duration
}

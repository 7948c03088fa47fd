// Package executor runs parsed GraphQL operations against a wired schema.
//
// Execution is depth-first and synchronous: each field resolution binds the
// registered fetcher's parameters (arguments, request headers, query
// parameters, execution context), invokes the fetcher, and completes the
// value against the field's declared type. Fields without a fetcher fall
// back to a property lookup on the parent value.
//
// Error boundaries
//   - Binding and coercion failures during one field's resolution are
//     recorded as located errors on the result; sibling fields are not
//     aborted.
//   - A null resolved for a non-null field propagates to the nearest
//     nullable ancestor per the GraphQL spec.
//   - Unknown operations and invalid variables fail the whole request
//     before any field executes.
//
// The executor itself holds no per-request state; one Executor may serve
// concurrent requests. Each request allocates its own execution state, raw
// argument maps, and response tree, so no synchronization is needed.
package executor

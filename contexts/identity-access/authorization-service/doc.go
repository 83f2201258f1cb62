// Package authorization implements the authorization manager inside
// TraceChain: a single administrative account plus the set of accounts
// permitted to register products and log lifecycle events.
//
// Layering:
// - domain: errors and invariants
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence and cache
// - adapters: concrete HTTP, memory, postgres, and redis implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - No audit event is recorded for authorization changes; access-control
//   auditing is out of scope.
package authorization

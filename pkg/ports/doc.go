// Package ports defines the driven-side interfaces of the ErgoWeb core:
// the persisted configuration store and the generation service. Adapters
// under internal/adapters implement these contracts; the contract test
// suite in this package keeps every implementation honest.
package ports

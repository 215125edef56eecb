// Package driven defines the interfaces the core services depend on:
// stores, locks, the external sheet source and configuration. Driven
// adapters implement them.
package driven

// Package driving defines the interfaces through which the CLI invokes
// the core services: sync, compare, promote and backup management.
package driving

// Package services implements the driving ports: the sync orchestrator,
// the staging/production views, the backup manager and the promotion
// engine. Services hold no storage logic of their own; they coordinate
// the driven ports and own the workflow invariants (single-writer locks,
// staging-first writes, backup-before-promote).
package services

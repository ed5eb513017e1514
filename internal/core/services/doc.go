// Package services contains the core application services: ingestion,
// retrieval, answering, summarisation and lifecycle management. Services
// depend only on driven ports and implement the driving ports consumed
// by the CLI and watcher adapters.
package services

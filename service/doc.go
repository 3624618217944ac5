// Package service orchestrates the core components of the
// matching engine — sequencer ring, per-symbol order books, and the
// market-data cache.
//
// It provides a clean API for submitting and querying orders,
// decoupled from network transports and messaging sinks.
package service

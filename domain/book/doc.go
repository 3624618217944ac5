// Package book implements the in-memory price-time-priority order
// book for a single symbol. Each side keeps its price levels in a
// btree with FIFO order queues per level, supports partial fills,
// and produces immutable top-of-book snapshots.
//
// The book operates as a single-writer structure: only the engine's
// consumer goroutine mutates it, so it carries no locks.
package book

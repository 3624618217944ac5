// Package sequence provides the bounded MPSC ring that imposes a
// single global order on concurrently submitted commands. Producers
// claim strictly increasing sequence numbers with backpressure; one
// consumer observes commands in exactly that order.
package sequence

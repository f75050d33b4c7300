// Package fork implements the fork operator: it runs a copy of a
// sub-pipeline per worker (one goroutine each, or one ssh-spawned remote
// process each, depending on the thread generator), then reassembles
// their output — merged in sort-key order, or simply interleaved as it
// arrives — into this operator's own output stream.
package fork

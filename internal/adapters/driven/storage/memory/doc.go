// Package memory provides in-memory implementations of driven ports.
// They back tests, the offline index and short-lived CLI runs.
package memory

// Package signatures holds the fixed catalogue of named credential formats
// that outguard recognises by pattern.
//
// Each Signature is a pure value: matching never mutates shared state, so the
// catalogue is safe for concurrent use without synchronization. Only the
// first match of each signature is reported per scan, which bounds output
// size at the cost of under-reporting repeated secrets of the same kind.
package signatures

// Package keys provides deterministic signing keys and record signing helpers.
//
// It is used by the fixture node and by tests to produce peer records that a
// real node would emit. Nothing in the decoding path depends on it.
package keys

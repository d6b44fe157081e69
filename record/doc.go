// Package record turns node responses into validated domain records.
//
// Each builder either returns a fully validated record or a structured
// *errs.Error; the batch builders apply them per entry so one bad entry never
// hides the rest of a response.
package record

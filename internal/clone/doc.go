// Package clone copies a pipeline template so each fork worker gets an
// independent copy to run.
//
// Function-valued arguments (see pipeline.FunctionValue) cannot be
// copied like ordinary data, so a copy proceeds in three steps: hide
// every function argument in the template behind an integer reference,
// deep-copy the template, then restore functions on both the template
// and the copy.
package clone

/*
Package engine implements the Worker Pool (C6) and the Audit Task (C7):
the pool paces and bounds dispatch of tasks drained from the collator,
and each dispatched task runs the fetch/validate/persist state machine
against a single Portal client handle.
*/
package engine

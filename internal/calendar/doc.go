// Package calendar holds the pure event logic: turning raw feed records into
// confidence-tagged instants, deciding whether they are due for an alert,
// deriving their dedup identifiers and rendering the alert text.
//
// Nothing in this package does I/O; "now" is always passed in.
package calendar

// Package clock provides a tiny time abstraction.
//
// Code that derives values from the current date (for example the dated
// subject line of an outgoing mail) depends on the Clocker interface instead
// of calling time.Now() directly, so tests can pin the date with NewFixed.
package clock

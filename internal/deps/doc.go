// Package deps checks that the external binaries mashup shells out to are
// installed, and reports their versions for diagnostics.
package deps

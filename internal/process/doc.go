// Package process terminates browser process trees left behind by the
// Chrome backend.
package process

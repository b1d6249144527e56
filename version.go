// Package petrel holds shared metadata for the Petrel CLI.
package petrel

// Version is the current Petrel release version.
var Version = "0.3.0"

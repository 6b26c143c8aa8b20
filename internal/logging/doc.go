// Package logging configures the shared logrus logger for ConMan.
//
// The logger is created once in main and passed down explicitly; no
// package in this module logs through a global. Setup applies the
// resolved options to that instance and may be called again with new
// options, replacing the previous configuration instead of stacking
// another file sink on top.
//
// Console output goes to stderr so that command output on stdout stays
// machine-readable. A second, color-free copy of every record is
// appended to a rotating session log under ~/.conman unless file
// logging is disabled by flag or environment variable.
package logging

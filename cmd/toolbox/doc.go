// Command toolbox is the command line front end for the file conversion
// pipeline. It runs conversions locally or against a running daemon, starts
// the daemon in the foreground, and reports dependency, sweeper, and history
// status.
package main

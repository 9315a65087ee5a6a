// Package format classifies uploaded files by extension and parses the
// requested output format into a target family.
//
// Classification looks only at the final extension of the client-supplied
// name, lower-cased. Target parsing is the single gate that rejects unknown
// output formats before any file content is read.
package format

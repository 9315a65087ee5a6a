// Package textutil normalizes client-supplied file names before they reach
// the conversion pipeline, where only the extension drives classification.
package textutil

// Package daemon coordinates the long-running toolbox process.
//
// It wires configuration, the conversion service, the history ledger, and the
// temp sweeper into a single lifecycle with flock-based locking to prevent
// multiple instances. The HTTP boundary lives here too: multipart uploads are
// decoded into uploaded files, handed to the conversion service, and the
// resulting artifact or JSON error is written back to the caller.
//
// Keep orchestration logic here: conversion rules live in the conversion
// package while the daemon focuses on startup, shutdown, and transport.
package daemon

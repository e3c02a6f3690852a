// Package server runs the diagnostics HTTP listener of the link daemon.
//
// The listener is started in the background by [Server.RunServer] and
// stopped gracefully by [Server.Shutdown]; signal handling belongs to the
// caller.
package server

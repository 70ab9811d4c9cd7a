// Package server runs the sync server: the HTTP listener and the background
// workers share one lifecycle and stop together on SIGTERM, SIGINT or
// SIGQUIT.
package server

// Package http implements the HTTP transport of the sync server.
//
// Every protocol method is served at POST /sync/<method>. Request bodies are
// gzip-compressed JSON and the envelope travels in the X-Sync-Header header;
// the older multipart envelope (fields c, k, s and data) is still accepted.
// Tracing, access logging, compression, body limits and host key checks are
// handled here before requests reach the service layer.
package http

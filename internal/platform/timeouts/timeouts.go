// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between entry points and makes
// the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request caps the time allowed for a single API request, including any
// upstream AI provider call it triggers.
const Request = 30 * time.Second

// AIProvider caps a single round trip to the AI provider.
const AIProvider = 25 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

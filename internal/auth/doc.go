// Package auth implements credential handling for the API: bcrypt PIN
// hashing, in-memory sessions, HMAC CSRF tokens, single-use PIN reset
// tokens, and fixed-window rate limiting.
//
// Sessions and rate-limit windows live in memory on purpose. A restart
// logs agents out and resets counters, and nothing credential-shaped is
// persisted beyond hashed PINs and hashed reset tokens.
package auth

// Package history keeps a local SQLite log of every API call the gateway
// makes: timestamp, method, path, status, duration, error and the user that
// was logged in. Manager implements gateway.Recorder.
package history

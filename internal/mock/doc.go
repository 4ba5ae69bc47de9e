// Package mock serves an in-memory version of the car inventory API.
//
// It issues HS256 tokens from POST /user/login for the configured users and
// requires "Authorization: Bearer <token>" on every brand and car route.
// Seed data comes from the config (or a built-in demo set). Uploaded images
// are kept in memory under a uuid-prefixed filename and served from
// /uploads/{filename}.
//
// The server is used by "carcli mock" for demos and by the integration
// tests of the gateway, viewstate and cli packages.
package mock

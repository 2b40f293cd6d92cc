// Package probe turns dependency checks into uniform readiness functions:
// a ping callback, the SQL connection and an HTTP endpoint. The info package
// runs them behind /healthz and /readyz and the healthcheck command runs an
// HTTP probe against a live server.
package probe

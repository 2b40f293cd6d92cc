// Package cleanshotcloud is a small self-hosted upload backend for the
// CleanShot screenshot tool. The module is split into a handful of packages
// that can be used on their own: an ordered pattern router, an
// identifier-validated SQL query builder and the HTTP helpers that glue them
// into a running server.
//
// # Packages
//
//   - router: ordered "@name" pattern dispatch with sticky 405 handling and
//     the middleware stack (logging, CORS, timeouts, OpenAPI validation).
//   - querybuilder: insert/update/delete/select statements over database/sql
//     with strict identifier checks and bound values for MySQL, Postgres and
//     SQLite.
//   - responder: JSON success and error bodies plus trace id propagation.
//   - info and probe: status, health, readiness, version and docs endpoints.
//   - jsonutil: sonic wrappers used for every JSON body.
//   - config: env and .env driven server configuration.
//
// The cmd/cleanshot-cloud binary wires everything together:
//
//	cleanshot-cloud serve --env-file .env
//	cleanshot-cloud healthcheck --url http://127.0.0.1:8080/info/readyz
package cleanshotcloud

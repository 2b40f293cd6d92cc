// Package info serves build metadata, health probes and the OpenAPI document
// of the service under /info. Register mounts the endpoints on a router.Router;
// they must be registered before any catch-all template such as "/@slug".
package info

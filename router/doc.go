// Package router matches requests against an ordered list of method and
// "@name" path templates and wraps the result in the transport defaults used
// by the service: OpenAPI validation, CORS, default headers, timeouts and
// request logging.
//
// Registration order decides precedence. The first route whose method and
// template both match handles the request; nothing after it is examined.
// When no route matches, the outcome is 405 if any route accepted the request
// method and 404 otherwise. Handler errors and panics become a 500 whose body
// carries the failure message. See ExampleRouter and ExampleNew_customOptions.
package router

// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between device clients and
// the study service, translating HTTP concerns to progress and quiz
// operations and mapping service errors to status codes.
package api

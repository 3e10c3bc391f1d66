// Package ciutil locates the external services used by integration tests.
//
// Integration tests for the postgres, redis and amqp packages read their
// endpoints through this package so that every suite agrees on variable
// names, fallbacks and skip behavior. Outside CI a missing endpoint skips the
// test; in CI with SNAPSOLVE_REQUIRE_INTEGRATION set it fails the test so a
// misconfigured pipeline cannot silently pass.
package ciutil

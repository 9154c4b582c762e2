// Package middleware provides the HTTP middleware of the shell API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing, optionally driven by the shell's
//     message origin policy
//   - RateLimit: Per-IP token bucket rate limiting
//   - RequestID: X-Request-ID propagation into the request context
//   - AccessLog: One zap line per request
//
// Rate Limiting:
//   - Per-IP tracking with idle client cleanup
//   - Token bucket algorithm (golang.org/x/time/rate)
//   - Configurable RPS and burst capacity
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.CORS(middleware.PolicyCORSConfig(policy.Allow)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware

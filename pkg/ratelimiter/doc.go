// Package ratelimiter throttles requests with a token bucket per key.
//
// Bucket holds the policy (capacity, refill) and delegates state to a Store:
// MemoryStore for a single process, RedisStore when several instances share
// the limit. Middleware applies a bucket to HTTP routes keyed by a KeyFunc,
// typically the client IP:
//
//	limit := ratelimiter.Middleware(bucket, ratelimiter.Composite(
//		ratelimiter.Prefix("login"),
//		func(r *http.Request) string { return clientip.FromContext(r.Context()) },
//	))
//
// A request that finds too few tokens is denied without consuming any.
package ratelimiter

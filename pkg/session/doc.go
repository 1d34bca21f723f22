// Package session keeps an authenticated user signed in across requests.
//
// A Manager issues an opaque random token, stores a Session record under it
// and hands the token to the browser in a signed, HttpOnly cookie. On every
// request the Middleware resolves the cookie back to a Session and loads the
// user fresh from storage, placing both in the request context.
//
// Lifetimes:
//
//   - Establish gives a new session a server-side lifetime of Config.TTL and
//     a cookie with the same Max-Age.
//   - SetLifetime(remember=true) extends the record to Config.RememberTTL and
//     re-issues the cookie with that Max-Age.
//   - SetLifetime(remember=false) keeps the record's current bound and
//     re-issues the cookie without Max-Age, so it ends with the browser.
//
// Establish always rotates: a token already present on the request is
// deleted before the new one is issued. Sessions of the same user on other
// devices are untouched.
//
// Three Store implementations ship with the package and are chosen by
// Config.Store: MemoryStore for tests and single-process development,
// RedisStore and MongoStore for deployments. Stores enforce their own
// expiry (sweeper, key TTL, TTL index) while the Manager also rejects any
// record whose ExpiresAt has passed.
package session

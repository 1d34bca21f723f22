// Package cookie writes and reads HTTP cookies with shared defaults and
// optional HMAC-SHA256 signing.
//
// Signed values are bound to the cookie name and may carry an expiry that is
// checked on read, independent of what the browser does with Max-Age. Several
// secrets can be configured for rotation: the first signs, all of them verify.
//
//	jar, err := cookie.New(cfg)
//	_ = jar.SetSigned(w, "oauth_state", state, cookie.WithMaxAge(10*time.Minute))
//	state, err := jar.GetSigned(r, "oauth_state")
package cookie

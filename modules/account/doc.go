// Package account serves the authentication endpoints mounted at /auth:
// local registration and login, Google and Facebook sign-in, the
// remember-me switch, the current-user probe and logout. It also provides
// the Mongo-backed auth.Storage.
package account

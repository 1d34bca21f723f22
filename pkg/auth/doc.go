// Package auth owns user identity: who a user is, how a request proves it,
// and what an authenticated user may touch.
//
// Three paths lead to a User record, one per Provider:
//
//   - local: Service.Register and Service.Authenticate with a bcrypt digest;
//   - google and facebook: a Coordinator drives the OAuth authorization-code
//     flow and hands the resulting profile to Service.ResolveOrCreate.
//
// Each (provider, provider_id) pair maps to exactly one User, and a non-empty
// email belongs to at most one User across all providers. Accounts are never
// merged: an OAuth login whose email is already owned by another identity
// fails with ErrDuplicateIdentity.
//
// Failures that mean "the caller did not prove who they are" all match
// ErrAuthenticationFailed with errors.Is. AccountProviderMismatchError
// carries the provider the account must use instead.
//
// Guard functions (RequireAuthenticated, RequireOwnership) and the
// RequireAuth middleware read the user placed in the request context by the
// session layer through WithUser.
package auth

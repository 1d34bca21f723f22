// Package validator composes declarative field checks into a single error.
//
// A Rule pairs a check with the ValidationError reported when it fails. Apply
// runs every rule and returns ValidationErrors (nil when all pass), which the
// HTTP layer renders as a 400 response:
//
//	err := validator.Apply(
//		validator.RequiredString("username", in.Username),
//		validator.ValidEmail("username", in.Username),
//		validator.RequiredString("password", in.Password),
//	)
package validator

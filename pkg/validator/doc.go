// Package validator provides composable, rule-based validation for the
// client-side authentication forms.
//
// Validation is expressed as Rule values combined with Apply. Each rule
// carries the field name it belongs to, so callers can render errors next to
// the offending input:
//
//	err := validator.Apply(
//	    validator.RequiredString("username", username),
//	    validator.MinLenString("username", username, 3),
//	    validator.ValidEmail("email", email),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs.Has("email") {
//	    // surface errs.Get("email") in the form
//	}
//
// Validation errors never reach the network; they are recovered entirely
// within the form that produced them.
package validator

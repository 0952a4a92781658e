// Package submission turns validated form state into one request to the
// resume service.
//
// A Pipeline moves Idle → Generating (or Editing when an edit id is present)
// → Succeeded or Failed. Submissions with a non-empty error map are refused
// with ErrFormInvalid. Successful responses pass through Normalize, which
// applies ResponseFallbacks so missing collections read as empty. Failures
// are classified into a *Failure carrying a user-facing message, after which
// the pipeline is Idle again and the same state can be resubmitted.
package submission

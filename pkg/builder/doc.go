// Package builder wires the form engine into an editing session.
//
// A Session selects a resume type from a catalog (or loads a saved document
// for editing), owns the state store, recomputes the error map after every
// mutation and submits through a submission.Pipeline. It implements
// render.Mutator, so widgets returned by Widgets mutate it directly:
//
//	s, _ := builder.New(svc)
//	_ = s.SelectType(catalog.TypeFresher)
//	for _, w := range s.Widgets() {
//		// present w, call w's event methods on user input
//	}
//	result, err := s.Submit(ctx)
//
// Selecting a type, loading a document or calling Reset supersedes any
// outstanding submission; its answer is discarded with ErrStaleResponse.
// Dashboard covers the saved-document operations: list, delete, download.
package builder

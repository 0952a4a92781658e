// Package render turns schema nodes into editable widgets.
//
// Dispatch selects one variant of the closed Widget union per field kind and
// wires the widget's events (Change, Pick, Remove, Add, item Remove) to a
// Mutator. Repeaters recurse into their items by deriving a field per
// template entry whose ID is the item's runtime id, so a single error map
// lookup serves top-level and nested values alike. Dispatch holds no state
// between calls; renderers under pkg/renderers present the resulting tree.
//
// MapErrorPayload maps field errors reported by a remote service onto the
// same runtime ids.
package render

// Package models defines the domain entities shared by the resonate stores
// and the recommendation pipeline.
//
//   - [MediaFile] : a library file's location relative to the library root
//   - [Recommendation] : a (file id, distance) pair from the recommendation
//     index; lower distance means more similar
//
// All entities are transient: they are constructed fresh per invocation and
// discarded after rendering.
package models

// Package runtime synchronizes the story graph with its unit store.
//
// BuildGraph is the pure projection of unit documents into nodes and edges.
// Engine owns the current graph snapshot and runs the mutations (connect,
// disconnect, restyle, create, save, delete, rename), each followed by a full
// rebuild from the store.
package runtime

// Package vqg provides the visual query graph (VQG) record types shared by
// every translation direction.
//
// A graph is an ordered list of Connections. Each Connection links a source
// Entity to a target Entity through one or more Properties; every entry of
// Connection.Properties is an independent triple pattern over the same
// endpoints, while a Property's own Children describe a property path for
// that single predicate slot.
//
// This package contains types, the JSON codec, canonical JSON and
// content-addressed ids. It imports nothing internal, so every other
// package can depend on it.
//
// Key design constraints:
//   - Variable ids always start with "?"
//   - Property trees are owned values (no sharing, no cycles)
//   - Decoding backfills missing fields from an explicit default table so
//     graphs exported by older versions keep working
//   - All JSON keys use camelCase for compatibility with exported graphs
package vqg

// Package document defines the semantic tree every conversion stage works on.
//
// A conversion builds one tree per request:
//
//	markdown ──parse──▶ *Node ──substitute diagrams──▶ *Node ──▶ layout | structured export
//
// The tree is a tagged union: every Node carries a Kind and only the fields
// meaningful for that kind. Children order is document order and is never
// changed by any stage; the diagram substitution stage only replaces
// placeholder nodes one for one.
//
// Policies that must agree between the paginated and structured engines
// (list markers, table row shading) live here so both engines share a
// single implementation.
package document

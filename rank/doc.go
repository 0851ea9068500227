// Package rank fuses the retrieval pools into one scored candidate list.
//
// Sparse and dense scores live on incompatible scales, so each pool is
// min-max normalized before blending. The blend weights depend on the
// query intent: lexical evidence dominates for price and document
// questions, semantic evidence for open-ended ones. On top of the blend
// sit two multiplicative boosts: an exact-match boost on structured
// price/speed fields, and a signature boost for rare terms that
// concentrate in a single establishment's passages.
package rank

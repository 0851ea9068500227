// Package query turns raw query text into the structured interpretation
// the rest of the pipeline consumes: an intent with a confidence, the
// entity codes the query names (and whether they justify a hard filter),
// extracted prices and speeds, and the normalized beneficiary category.
//
// Everything here is rule-based and deterministic. Ambiguity is resolved
// by fixed tie-break rules, never surfaced as an error.
package query

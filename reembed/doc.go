// Package reembed replaces the stored vectors of every passage with
// embeddings from the currently configured model. Changing the
// embedding model invalidates stored vectors, since vectors from
// different models are not comparable; running a reembed afterwards
// restores the cheap vector reuse the engine relies on during rebuilds.
package reembed

// Package storage defines the persistence contracts for the document
// corpus and its derived passages.
//
// Documents persist in their JSON interchange form, the same shape the
// ingest files use. Passages persist in a compact MUS binary encoding
// because they carry embedding vectors, and reusing stored vectors is
// what makes a rebuild cheap: only passages whose content changed need
// to go back to the embedding service.
//
// The badger subpackage provides the BadgerDB implementation.
package storage

// Package tei provides a cross-encoder pair scorer backed by a
// text-embeddings-inference style rerank endpoint.
//
// The service contract is the /rerank route exposed by Hugging Face's
// text-embeddings-inference server and compatible gateways: a JSON body
// with the query and candidate texts, answered by (index, score) pairs.
package tei

// Package dispatcher maps the eight named tool operations onto the
// underlying Store, Fusion engine, Ingester, Embedder, and knowledge-graph
// traversal, sharing one implementation across both wire transports.
//
// Every handler validates its arguments before touching any state and
// returns a typed *apperr.Error on violation; write handlers additionally
// write an audit entry regardless of outcome, including on a rejected path
// or invalid argument, so the audit log stays a complete record of every
// attempted mutation.
package dispatcher

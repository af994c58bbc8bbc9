// Package sds implements the in-memory dataset engine and codec for the
// SDS self-describing tabular data format: a sequence of pages, each
// carrying a shared layout (schema) plus per-page parameter scalars,
// array values, and a column table.
//
// Files may be stored uncompressed, gzip-compressed, or LZMA-compressed
// (see the stream backends in internal/stream), in either a textual or
// a binary on-disk representation that round-trips bit-exactly across
// tools.
package sds

// Package elastic implements the EDS value type: parsing and
// serialization of the textual formats, the derived metadata index, the
// two storage modes, the adjacent-symbol merge primitive and the query
// primitives (Extract, CheckPosition, GeneratePatterns).
//
// # Data model
//
// An EDS is a sequence of symbols σ₁…σₙ, each a non-empty ordered list of
// alternative strings; it represents every concatenation that picks one
// alternative per symbol. Derived scalars: n (symbol count), m (total
// alternatives) and N (total characters). Optional sources label each
// alternative with the set of path ids it belongs to; the singleton {0}
// means "all paths".
//
// # Storage modes
//
// StorageFull materializes every alternative and supports all operations.
// StorageMetadataOnly keeps O(n+m) index data plus an open handle to the
// backing file; ReadSymbol re-parses symbols on demand, and operations
// that need the whole string table (Sets, Extract, Save, MergeAdjacent,
// Fingerprint) fail with ErrModeUnsupported. Memory scales with the index
// rather than with N, which is what operational statistics and structural
// inspection of large pangenome files need.
//
// # Formats
//
// Two equivalent text encodings are accepted: the full form wraps every
// symbol in braces ({ACGT}{A,ACA}), the compact form writes
// single-alternative symbols bare (ACGT{A,ACA}). Sources use the flat
// sEDS form, one {id,…} group per alternative in canonical order.
package elastic

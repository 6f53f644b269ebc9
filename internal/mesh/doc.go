// Package mesh decodes model files into the in-memory records the import
// pipeline reviews and persists.
//
// The Processor is a pure, synchronous transformation: given a candidate's
// bytes it either returns a Record carrying derived attributes (triangle
// count, bounds, classification tags, a rendered preview) or an error. It
// performs no I/O beyond reading the candidate and never mutates shared
// state, so identical bytes always produce identical output.
//
// Both binary and ASCII STL are supported; format detection is automatic.
package mesh

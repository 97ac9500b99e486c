// Package spool provides a write-then-read byte buffer that keeps small
// payloads in memory and transparently spills larger ones to a temporary
// file.
//
// The reassembly engine buffers asset payloads whose output path is not yet
// known; a package may carry assets far larger than is reasonable to hold in
// memory for every deferred entry, so the buffer bounds resident memory at a
// fixed ceiling while keeping the common small-asset case allocation-only.
package spool

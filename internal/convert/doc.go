// Package convert orchestrates a whole package conversion: it parses the
// manifest, drives the unitypkg reassembly pass, and streams resolved
// entries into a UPM archive builder.
//
// Failures local to one source entry are logged and counted without
// stopping the pass; failures writing the destination abort the run, since
// a half-written archive cannot be salvaged. The destination only appears
// once the archive sealed successfully.
package convert

// Package unitypkg reads Unity asset packages (.unitypackage files).
//
// A .unitypackage is a gzip-compressed tar stream whose entries are grouped
// into identifier directories, each holding up to three members: the asset
// bytes ("asset"), the asset's Unity metadata ("asset.meta"), and a text file
// naming the asset's logical path ("pathname"). Members of one identifier may
// arrive in any order, so the package cursor reassembles them in a single
// forward pass: payloads seen before their pathname are parked in spill-aware
// buffers, payloads seen after it stream straight through.
//
// The stream is consumed strictly forward exactly once; an Entries cursor is
// finite and cannot be restarted.
package unitypkg

// Package upm writes Unity Package Manager archives and parses their
// package.json manifests.
//
// A UPM archive is a zip whose members all live under a single
// "<name>@<version>/" prefix derived from the manifest.
package upm

// Package testsupport provides shared fixtures for upmconv tests, chiefly
// builders that synthesize .unitypackage streams from in-memory entry lists.
package testsupport

// Package testsupport provides shared fixtures for package tests: a config
// factory rooted in temp directories and a canned Tautulli API server.
package testsupport

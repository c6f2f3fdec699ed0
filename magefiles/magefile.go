//go:build mage

// Package main provides build targets for the tracker project using Mage.
//
// Usage:
//
//	mage build             Compile the tracker binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests (exclude tests/)
//	mage test:integration  Build, then run the binary-driven tests
//	mage test:postgres     Run the relational tests against $TRACKER_TEST_POSTGRES_DSN
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install tracker to GOPATH/bin
//	mage stats DIR BACKEND Print record counts of a data directory
package main

import "github.com/magefile/mage/mg"

// Default is the target run by a bare "mage".
var Default = Build

// Test groups test targets (all, unit, integration, postgres).
type Test mg.Namespace

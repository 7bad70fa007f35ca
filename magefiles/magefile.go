//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the shelf project using Mage.
//
// Usage:
//
//	mage build        Compile the shelf binary to bin/
//	mage test:all     Run all tests
//	mage test:race    Run all tests with the race detector
//	mage test:cover   Run tests and write coverage.out
//	mage lint         Run golangci-lint
//	mage serve        Build and serve with a throwaway data directory
//	mage clean        Remove build artifacts
//	mage install      Install shelf to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "shelf"
	binaryDir  = "bin"
	cmdDir     = "./cmd/shelf"
)

// Build compiles the shelf binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, "coverage.out", ".devdata"} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Serve builds the binary and serves on localhost with config and data
// under .devdata/.
func Serve() error {
	mg.Deps(Build)
	return sh.RunWithV(
		map[string]string{"SHELF_DEBUG": "true", "SHELF_LOG_LEVEL": "debug"},
		filepath.Join(binaryDir, binaryName),
		"--config-dir", filepath.Join(".devdata", "config"),
		"--data-dir", filepath.Join(".devdata", "data"),
		"serve", "--addr", "127.0.0.1:9926",
	)
}

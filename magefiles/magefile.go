//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

var programs = []string{"hitmap", "hitedep", "decaychain", "trackrows"}

// cgoEnv passes the HDF5 include and library paths through to cgo.
func cgoEnv() map[string]string {
	return map[string]string{
		"CGO_ENABLED": "1",
		"CGO_LDFLAGS": os.Getenv("CGO_LDFLAGS"),
		"CGO_CFLAGS":  os.Getenv("CGO_CFLAGS"),
	}
}

// Build compiles every program into ./bin.
func Build() error {
	deps := make([]interface{}, len(programs))
	for i, p := range programs {
		deps[i] = mg.F(BuildProgram, p)
	}
	mg.Deps(deps...)
	fmt.Println("Compilation finished")
	return nil
}

func BuildProgram(name string) error {
	fmt.Printf("Building %s executable...\n", name)
	return sh.RunWithV(cgoEnv(), "go", "build", "-o", "./bin/"+name, "./"+name)
}

func Test() error {
	return sh.RunWithV(cgoEnv(), "go", "test", "./...")
}

// Integration runs the tests that need an object store, with the endpoint
// taken from HGCAL_TEST_S3_ENDPOINT.
func Integration() error {
	if os.Getenv("HGCAL_TEST_S3_ENDPOINT") == "" {
		return fmt.Errorf("HGCAL_TEST_S3_ENDPOINT is not set")
	}
	return sh.RunWithV(cgoEnv(), "go", "test", "-run", "Integration", "./source/...")
}

func Clean() error {
	return sh.Rm("bin")
}

//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/challan"

// Build tidies deps, then compiles the CLI to ./bin/challan.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building challan binary...")
	return sh.Run("go", "build", "-o", binary, "./cmd/challan")
}

// Serve builds then starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	fmt.Println(">> Starting challan server...")
	return sh.RunV("./"+binary, "serve")
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Cover runs the tests with a coverage profile written to coverage.out.
func Cover() error {
	fmt.Println(">> Running tests with coverage...")
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Lint runs go vet, then golangci-lint if available.
func Lint() error {
	if err := sh.Run("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts and coverage output.
func Clean() error {
	fmt.Println(">> Cleaning...")
	os.Remove("coverage.out")
	return os.RemoveAll("bin")
}

// Install installs the CLI to $GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.Run("go", "install", "./cmd/challan")
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}

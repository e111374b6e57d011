// Command build compiles srcfmt into bin/, stamping the version from git.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const versionVar = "github.com/andyballingall/srcfmt/internal/app.Version"

func main() {
	binaryName := "srcfmt"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}

	versionOut, _ := exec.Command("go", "run", "./scripts/version").Output()
	version := string(versionOut)
	if version == "" {
		version = "dev"
	}

	if err := os.MkdirAll("bin", 0o755); err != nil {
		fmt.Printf("❌ Failed to create bin directory: %v\n", err)
		os.Exit(1)
	}

	outputPath := filepath.Join("bin", binaryName)
	fmt.Printf("Building srcfmt %s...\n", version)

	cmd := exec.Command("go", "build", "-trimpath",
		"-ldflags", fmt.Sprintf("-s -w -X %s=%s", versionVar, version),
		"-o", outputPath, "./cmd/srcfmt")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Build failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Build complete: %s\n", outputPath)
}

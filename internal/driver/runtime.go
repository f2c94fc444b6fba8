package driver

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

//go:embed runtime/runtime.asm
var runtimeSource string

// RuntimeObjectPath assembles the embedded runtime source into a temporary
// object file and returns its path, so the runtime asset travels inside the
// compiled `woc` binary rather than depending on a path relative to the
// current working directory.
func RuntimeObjectPath() (string, error) {
	dir, err := os.MkdirTemp("", "woc-runtime-*")
	if err != nil {
		return "", fmt.Errorf("driver: creating runtime staging dir: %w", err)
	}
	asmPath := filepath.Join(dir, "runtime.asm")
	if err := os.WriteFile(asmPath, []byte(runtimeSource), 0o644); err != nil {
		return "", fmt.Errorf("driver: writing runtime source: %w", err)
	}
	objPath := filepath.Join(dir, "runtime.o")
	cmd := exec.Command("nasm", "-f", "elf64", asmPath, "-o", objPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("driver: assembling runtime object: %w: %s", err, out)
	}
	return objPath, nil
}

// Package driver orchestrates one end-to-end compilation: preflight checks,
// the lex/parse/sema/ir/codegen pipeline, and the external nasm/ld
// assemble/link/run steps.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"woc/internal/ast"
	"woc/internal/codegen"
	"woc/internal/diag"
	"woc/internal/ir"
	"woc/internal/lexer"
	"woc/internal/parser"
	"woc/internal/sema"
	"woc/internal/token"
	"woc/internal/types"
)

// Stage bounds how far CompileTarget carries a request, for the -C/-S
// stop-early flags.
type Stage int

const (
	StageExecutable Stage = iota // full pipeline, link and (optionally) run
	StageAssemble                // stop after producing the .o (-S)
	StageCompile                 // stop after producing the .asm (-C)
)

// CompileRequest describes one compilation invocation.
type CompileRequest struct {
	SourcePath string
	OutputPath string // default: SourcePath with .obj extension
	Stage      Stage
	Run        bool // execute the linked binary and propagate its exit code
	DumpTokens bool
	DumpAST    bool
}

// CompileResult carries everything a caller (the CLI) needs to report on a
// compilation: the diagnostics produced (possibly non-critical warnings even
// on success), the paths of any artifacts written, and the run-mode exit
// code when applicable.
type CompileResult struct {
	Diagnostics  diag.Bag
	AssemblyPath string
	ObjectPath   string
	ExecPath     string
	TokenDump    string
	ASTDump      string
	RanExitCode  int
	Ran          bool
}

// CompileTarget runs preflight, then the compiler pipeline, then whatever
// external tooling the requested Stage calls for.
func CompileTarget(ctx context.Context, req CompileRequest) (CompileResult, error) {
	var res CompileResult

	if diags, ok := preflight(req); !ok {
		res.Diagnostics = diags
		return res, nil
	}

	data, err := os.ReadFile(req.SourcePath)
	if err != nil {
		return res, fmt.Errorf("driver: reading %s after preflight passed: %w", req.SourcePath, err)
	}
	source := string(data)

	interner := types.NewInterner()

	stream, ldiags := lexer.New(req.SourcePath, source).Lex()
	if req.DumpTokens {
		res.TokenDump = dumpTokens(stream)
	}
	res.Diagnostics = append(res.Diagnostics, ldiags...)
	if ldiags.HasCritical() {
		return res, nil
	}

	prog, pdiags := parser.New(req.SourcePath, source, stream, interner).Parse()
	res.Diagnostics = append(res.Diagnostics, pdiags...)
	if req.DumpAST {
		if txt, err := ast.PrintJSON(prog); err == nil {
			res.ASTDump = txt
		}
	}
	if pdiags.HasCritical() {
		return res, nil
	}

	sdiags := sema.New(req.SourcePath, source, interner).Analyze(prog)
	res.Diagnostics = append(res.Diagnostics, sdiags...)
	if sdiags.HasCritical() {
		return res, nil
	}

	irProg, idiags := ir.Lower(prog, source)
	res.Diagnostics = append(res.Diagnostics, idiags...)
	if idiags.HasCritical() {
		return res, nil
	}

	asmText, gdiags := codegen.New(req.SourcePath, source).Generate(irProg)
	res.Diagnostics = append(res.Diagnostics, gdiags...)
	if gdiags.HasCritical() {
		return res, nil
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = swapExt(req.SourcePath, ".obj")
	}

	asmPath := swapExt(outputPath, ".asm")
	if err := os.WriteFile(asmPath, []byte(asmText), 0o644); err != nil {
		// Same driver-error category as an assembler/linker failure, so it
		// renders through the diagnostic path rather than as a bare error.
		res.Diagnostics.Add(diag.Criticalf("cannot write %s: %v", asmPath, err))
		return res, nil
	}
	res.AssemblyPath = asmPath
	if req.Stage == StageCompile {
		return res, nil
	}

	objPath := swapExt(outputPath, ".o")
	if diags, err := assemble(ctx, asmPath, objPath); err != nil {
		return res, err
	} else if diags != nil {
		res.Diagnostics = append(res.Diagnostics, diags...)
		if diags.HasCritical() {
			return res, nil
		}
	}
	res.ObjectPath = objPath
	if !keepArtifact(req) {
		defer os.Remove(objPath)
	}
	if req.Stage == StageAssemble {
		return res, nil
	}

	if diags, err := link(ctx, objPath, outputPath); err != nil {
		return res, err
	} else if diags != nil {
		res.Diagnostics = append(res.Diagnostics, diags...)
		if diags.HasCritical() {
			return res, nil
		}
	}
	res.ExecPath = outputPath

	if req.Run {
		code, err := runExecutable(ctx, outputPath)
		if err != nil {
			return res, err
		}
		res.Ran = true
		res.RanExitCode = code
	}

	return res, nil
}

// keepArtifact reports whether the intermediate object file should survive
// past linking: only -S keeps its own stage's output; for every other stage
// CompileTarget removes the object file when it returns.
func keepArtifact(req CompileRequest) bool {
	return req.Stage == StageAssemble
}

func swapExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}

// preflight runs the extension, regular-file, read-permission, and
// output-directory write-permission checks, reported as pre-compilation
// diagnostics rather than letting a later stage fail on a missing/
// unreadable file or an unwritable destination after the whole pipeline
// has already run.
func preflight(req CompileRequest) (diag.Bag, bool) {
	var diags diag.Bag

	if filepath.Ext(req.SourcePath) != ".wo" {
		diags.Add(diag.Criticalf("%s: source files must have a .wo extension", req.SourcePath))
		return diags, false
	}

	info, err := os.Stat(req.SourcePath)
	if err != nil {
		diags.Add(diag.Criticalf("%s: %v", req.SourcePath, err))
		return diags, false
	}
	if !info.Mode().IsRegular() {
		diags.Add(diag.Criticalf("%s: not a regular file", req.SourcePath))
		return diags, false
	}

	if err := unix.Access(req.SourcePath, unix.R_OK); err != nil {
		diags.Add(diag.Criticalf("%s: permission denied: %v", req.SourcePath, err))
		return diags, false
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = swapExt(req.SourcePath, ".obj")
	}
	if err := unix.Access(filepath.Dir(outputPath), unix.W_OK); err != nil {
		diags.Add(diag.Criticalf("%s: output directory is not writable: %v", outputPath, err))
		return diags, false
	}

	return diags, true
}

// dumpTokens renders one token per line, used by the -lx flag and the
// dump-tokens subcommand.
func dumpTokens(stream *token.Stream) string {
	var b strings.Builder
	for _, tok := range stream.Tokens {
		b.WriteString(tok.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// runCommand runs name with args, capturing stderr for a driver-category
// diagnostic rather than letting a raw exec error bubble to the CLI
// unexplained.
func runCommand(ctx context.Context, name string, args ...string) diag.Bag {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		var diags diag.Bag
		diags.Add(diag.Criticalf("%s failed: %s", name, msg))
		return diags
	}
	return nil
}

func assemble(ctx context.Context, asmPath, objPath string) (diag.Bag, error) {
	diags := runCommand(ctx, "nasm", "-f", "elf64", asmPath, "-o", objPath)
	return diags, nil
}

func link(ctx context.Context, objPath, execPath string) (diag.Bag, error) {
	runtimePath, err := RuntimeObjectPath()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(filepath.Dir(runtimePath))
	diags := runCommand(ctx, "ld", objPath, runtimePath, "-o", execPath)
	return diags, nil
}

func runExecutable(ctx context.Context, path string) (int, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = "./" + abs
	}
	cmd := exec.CommandContext(ctx, abs)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("driver: running %s: %w", path, err)
}

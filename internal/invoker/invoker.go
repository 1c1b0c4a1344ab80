// Package invoker runs a single user-script invocation: read one JSON
// input file, call the script's run(inputs) entry point, write one JSON
// output file. Failures never escape the process; they are written to
// the output file as {"__error": message} with exit code 1.
package invoker

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"go-script-invoker/internal/models"
)

// harnessSource is the interpreter-side half of the invocation protocol.
//
//go:embed harness.py
var harnessSource string

// Invoker executes one script invocation per process. The zero value is
// usable; New fills in the defaults.
type Invoker struct {
	// PythonBin is the interpreter executable to resolve on PATH
	PythonBin string
	// BaseDir is where per-invocation staging directories are created
	BaseDir string
	// Logger receives human-readable diagnostics on stderr; the machine
	// contract is the output file and exit code only
	Logger *log.Logger
}

func defaultPythonBin() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// New creates an invoker with the default interpreter and staging dir.
func New() *Invoker {
	return &Invoker{
		PythonBin: defaultPythonBin(),
		BaseDir:   filepath.Join(os.TempDir(), "script-invocations"),
		Logger:    log.NewWithOptions(os.Stderr, log.Options{Prefix: "runner"}),
	}
}

// Execute runs the invocation pipeline and returns the process exit
// code: 0 with the script's result in the output file, or 1 with a
// structured error there. The context is plumbed through to the
// interpreter subprocess; no internal deadline is set, cancellation is
// the orchestrator's call.
func (inv *Invoker) Execute(ctx context.Context, scriptPath, inputPath, outputPath string) int {
	if err := checkInput(inputPath); err != nil {
		return inv.fail(outputPath, fmt.Sprintf("Failed to read inputs: %v", err))
	}

	bin, err := exec.LookPath(inv.pythonBin())
	if err != nil {
		return inv.fail(outputPath, fmt.Sprintf("Failed to load script: %v", err))
	}

	stageDir, harnessPath, err := inv.stageHarness()
	if err != nil {
		return inv.fail(outputPath, fmt.Sprintf("Failed to load script: %v", err))
	}
	defer os.RemoveAll(stageDir)

	// Fresh module name so the loaded script cannot collide with any
	// module the calling side has imported
	moduleName := "user_script_" + strings.ReplaceAll(uuid.New().String(), "-", "_")
	inv.logger().Debug("invoking script", "script", scriptPath, "module", moduleName)

	cmd := exec.CommandContext(ctx, bin, harnessPath, scriptPath, inputPath, outputPath, moduleName)
	cmd.Stdout = os.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		os.Stderr.Write(stderr.Bytes())
	}
	if runErr == nil {
		return 0
	}

	// Exit code 1 with an output file present means the harness already
	// reported a structured failure; just mirror the code.
	if exitErr, ok := runErr.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			return 1
		}
	}

	// The interpreter died before committing an output file (crash,
	// external kill, unwritable output path). Synthesize the error.
	msg := fmt.Sprintf("Script error: interpreter exited unexpectedly: %v", runErr)
	if detail := strings.TrimSpace(stderr.String()); detail != "" {
		msg += "\n" + detail
	}
	return inv.fail(outputPath, msg)
}

// checkInput verifies the input file exists and holds valid JSON before
// the interpreter is spawned. Any top-level value is accepted; only the
// output is required to be an object.
func checkInput(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return nil
}

// stageHarness writes the embedded harness into a uuid-named directory
// under BaseDir. The caller removes the directory when done.
func (inv *Invoker) stageHarness() (dir, path string, err error) {
	base := inv.BaseDir
	if base == "" {
		base = filepath.Join(os.TempDir(), "script-invocations")
	}
	dir = filepath.Join(base, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to stage harness: %w", err)
	}
	path = filepath.Join(dir, "harness.py")
	if err := os.WriteFile(path, []byte(harnessSource), 0644); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("failed to stage harness: %w", err)
	}
	return dir, path, nil
}

// fail writes the structured error to the output file and returns exit
// code 1. If the output path itself is unwritable the message goes to
// stderr as a last resort, mirroring the harness's own fallback.
func (inv *Invoker) fail(outputPath, message string) int {
	if err := models.NewError(message).WriteFile(outputPath); err != nil {
		inv.logger().Error("cannot write error output", "path", outputPath, "err", err)
		fmt.Fprintln(os.Stderr, message)
	}
	return 1
}

func (inv *Invoker) pythonBin() string {
	if inv.PythonBin != "" {
		return inv.PythonBin
	}
	return defaultPythonBin()
}

func (inv *Invoker) logger() *log.Logger {
	if inv.Logger != nil {
		return inv.Logger
	}
	return log.Default()
}

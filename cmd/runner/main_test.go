package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go-script-invoker/internal/models"
)

func TestUsageErrorWritesNoOutputFile(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "output.json")

	cases := [][]string{
		{},
		{"script.py"},
		{"script.py", "input.json"},
		{"script.py", "input.json", outputPath, "extra"},
	}
	for _, args := range cases {
		var stderr bytes.Buffer
		code := run(context.Background(), args, &stderr)
		if code != 1 {
			t.Fatalf("Expected exit code 1 for %d args, got %d", len(args), code)
		}
		if !strings.Contains(stderr.String(), "Usage:") {
			t.Fatalf("Expected usage line on stderr, got %q", stderr.String())
		}
		if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
			t.Fatalf("Expected no output file for %d args, stat err: %v", len(args), err)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skipf("python3 not available: %v", err)
	}

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.py")
	inputPath := filepath.Join(dir, "input.json")
	outputPath := filepath.Join(dir, "output.json")

	if err := os.WriteFile(scriptPath, []byte("def run(inputs):\n    return {\"y\": inputs[\"x\"] * 2}\n"), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	if err := os.WriteFile(inputPath, []byte(`{"x": 2}`), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	var stderr bytes.Buffer
	if code := run(context.Background(), []string{scriptPath, inputPath, outputPath}, &stderr); code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}

	result, err := models.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if result.IsError() {
		t.Fatalf("Expected success, got error: %s", result.ErrorMessage())
	}
	if result["y"] != float64(4) {
		t.Fatalf("Expected y=4, got %v", result["y"])
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const cleanFixture = `{
  "kind": "file",
  "children": [
    {"role": "item", "node": {
      "kind": "function_item",
      "fields": {"name": "answer"},
      "children": [
        {"role": "body", "node": {
          "kind": "block",
          "children": [
            {"role": "statement", "node": {
              "kind": "return_statement",
              "children": [
                {"role": "value", "node": {"kind": "literal", "fields": {"kind": "int", "value": "42"}}}
              ]
            }}
          ]
        }}
      ]
    }}
  ]
}`

func newTestRoot() {
	rootCmd.ResetFlags()
	rootCmd.ResetCommands()
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 256, "maximum diagnostics to retain per file")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel lowering workers (0=auto)")
}

func TestCheckCleanFixtureExitsZero(t *testing.T) {
	newTestRoot()
	dir := t.TempDir()
	path := filepath.Join(dir, "answer.json")
	if err := os.WriteFile(path, []byte(cleanFixture), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--color", "off", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("check failed on a clean fixture: %v", err)
	}
}

func TestVersionPrintsFingerprint(t *testing.T) {
	newTestRoot()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected version output, got none")
	}
}

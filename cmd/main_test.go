package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nTODO_TEST_A=plain\nTODO_TEST_B=\"quoted value\"\nTODO_TEST_C='single'\nTODO_TEST_D=kept\nnot a pair\n=novalue\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"TODO_TEST_A", "TODO_TEST_B", "TODO_TEST_C"} {
		t.Setenv(k, "")
	}
	t.Setenv("TODO_TEST_D", "from-env")

	loadEnvFile(path)

	want := map[string]string{
		"TODO_TEST_A": "plain",
		"TODO_TEST_B": "quoted value",
		"TODO_TEST_C": "single",
		"TODO_TEST_D": "from-env",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Fatalf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	loadEnvFile(filepath.Join(t.TempDir(), "missing"))
}

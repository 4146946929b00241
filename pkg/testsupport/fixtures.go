package testsupport

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set to 1.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// LoadFixture loads test data from testdata/name in the test package directory.
func LoadFixture(t testing.TB, name string) []byte {
	t.Helper()

	path := FixturePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads a JSON fixture and unmarshals it into dest.
func LoadFixtureJSON(t testing.TB, name string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, name), dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture %s: %v", name, err)
	}
}

// WriteGolden writes data to path, creating parent directories.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// Golden compares actual with testdata/golden/name. The file is created when
// missing and rewritten when UPDATE_GOLDEN=1.
func Golden(t testing.TB, name string, actual []byte) {
	t.Helper()

	path := GoldenPath(name)
	if os.Getenv(UpdateGoldenEnv) == "1" {
		WriteGolden(t, path, actual)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if !bytes.Equal(actual, expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(name string) string {
	return filepath.Join("testdata", name)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(name string) string {
	return filepath.Join("testdata", "golden", name)
}

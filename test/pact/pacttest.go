//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "bookstore-api"
	ConsumerName = "storefront"

	StateCatalogEmpty = "catalog is empty"
	StateBookStocked  = "book 0446310786 is stocked with 5 units"
	StateBookMissing  = "no book 9999999999"
)

const (
	StockedISBN  = "0446310786"
	MissingISBN  = "9999999999"
	StockedUnits = 5
	ShopperID    = "pact-shopper"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleIntakePayload provides stable test data for stock intake interactions.
func ExampleIntakePayload() map[string]any {
	return map[string]any{
		"isbn":         StockedISBN,
		"title":        "To Kill a Mockingbird",
		"contributors": []map[string]string{{"firstName": "Harper", "lastName": "Lee"}},
		"publisher":    "Grand Central Publishing",
		"genre":        "Classical",
		"price":        "12.99",
		"quantity":     StockedUnits,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

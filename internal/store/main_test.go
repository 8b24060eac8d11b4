package store_test

import (
	"os"
	"testing"

	"github.com/emrgen/graphbase/internal/tester"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()

	os.Exit(code)
}

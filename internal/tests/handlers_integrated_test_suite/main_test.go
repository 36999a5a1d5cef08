package handlers_integrated_test_suite

import (
	"context"
	"fmt"
	"os"
	"testing"

	api "github.com/rogerio-castellano/inventory-master/internal/http"
)

// TestMain runs the suite against the database in DATABASE_URL and skips it
// when none is configured.
func TestMain(m *testing.M) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		fmt.Println("DATABASE_URL not set, skipping integrated handler tests")
		os.Exit(0)
	}

	if err := setupTestRepos(context.Background(), url); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var err error
	token, err = generateToken(api.NewRouter(), adminEmail, adminPassword)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	code := m.Run()
	clearAllProducts()
	clearAllUsersExceptAdmin()
	database.Close()
	os.Exit(code)
}

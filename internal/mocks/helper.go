package mocks

import (
	"fmt"
	"log"
	"net/http"
)

// MockHelper runs background tasks inline so tests can assert on their
// side effects without synchronization.
type MockHelper struct{}

func (m *MockHelper) BackgroundTask(r *http.Request, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("Background task error: %v", err)
	}
}

func (m *MockHelper) NewEmailData() map[string]any {
	return map[string]any{}
}

func (m *MockHelper) FormatAmount(amount float64) string {
	return fmt.Sprintf("NGN %.2f", amount)
}

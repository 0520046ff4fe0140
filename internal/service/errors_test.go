package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"Part not found"}`, "Part not found"},
		{"validation list", `{"detail":[{"loc":["body","email"],"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{"detail object", `{"detail":{"message":"Vendor archived"}}`, "Vendor archived"},
		{"message", `{"message":"Rate limited"}`, "Rate limited"},
		{"error", `{"error":"Upstream down"}`, "Upstream down"},
		{"detail wins over message", `{"detail":"A","message":"B"}`, "A"},
		{"empty object", `{}`, genericBackendMessage},
		{"not json", `<html>502</html>`, genericBackendMessage},
		{"empty body", ``, genericBackendMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractErrorMessage([]byte(tt.body)))
		})
	}
}

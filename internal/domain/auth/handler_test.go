package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpay/socialpay-api/internal/pkg/response"
)

func TestRegisterHandlerErrors(t *testing.T) {
	svc, _, _ := newService(t)
	router := NewHandler(svc).Routes()

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"name":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"short password", `{"name":"Ada","email":"ada@example.com","password":"short"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"no identity", `{"name":"Ada","password":"password123"}`, http.StatusBadRequest, "IDENTITY_REQUIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			var out response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			require.NotNil(t, out.Error)
			assert.Equal(t, tc.code, out.Error.Code)
		})
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	opts, rest, err := parseArgs([]string{"--visitor", "v-1", "-q", "3", "--format", "ebook", "add", "some-id"})
	require.NoError(t, err)
	assert.Equal(t, "v-1", opts.visitorID)
	assert.Equal(t, 3, opts.quantity)
	assert.Equal(t, "ebook", opts.format)
	assert.Equal(t, []string{"add", "some-id"}, rest)

	_, _, err = parseArgs([]string{"--visitor", "v-1"})
	require.EqualError(t, err, "command is missing")
}

func startBackend(t *testing.T, productID uuid.UUID) {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/api/products/get", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"products": []map[string]any{{
				"id":       productID,
				"name":     "The Hobbit",
				"price":    100,
				"category": "fiction",
				"image":    "hobbit.png",
			}},
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	t.Setenv("STOREFRONT_API_URL", srv.URL)
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "memory")
	t.Setenv("STOREFRONT_LOG_LEVEL", "error")
}

func TestRun(t *testing.T) {
	productID := uuid.New()
	startBackend(t, productID)
	configPath := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "products",
			args: []string{"products"},
			want: "The Hobbit",
		},
		{
			name: "add prints the cart",
			args: []string{"-q", "2", "add", productID.String()},
			want: "total: PKR 303.00",
		},
		{
			name: "empty total",
			args: []string{"total"},
			want: "PKR 0.00",
		},
		{
			name:    "add unknown product",
			args:    []string{"add", uuid.NewString()},
			wantErr: "product not found",
		},
		{
			name:    "missing product id",
			args:    []string{"toggle"},
			wantErr: "toggle: productId is missing",
		},
		{
			name:    "unknown command",
			args:    []string{"checkout"},
			wantErr: `unknown command "checkout"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(t.Context(), append([]string{"--config", configPath}, tt.args...), &out)

			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

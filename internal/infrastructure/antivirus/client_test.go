package antivirus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.AntivirusConfig{
		ServiceURL: server.URL + "/v2/scan",
		Username:   "av-user",
		Password:   "av-pass",
		Timeout:    5 * time.Second,
	}, nil)
}

func TestClient_Scan(t *testing.T) {
	t.Run("posts the file as multipart with basic auth", func(t *testing.T) {
		var gotFile, gotName, gotPath string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "av-user", user)
			assert.Equal(t, "av-pass", pass)
			gotPath = r.URL.Path

			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			raw, _ := io.ReadAll(file)
			gotFile = string(raw)
			gotName = header.Filename

			_ = json.NewEncoder(w).Encode(map[string]any{"malware": false, "reason": ""})
		})

		result, err := client.Scan(context.Background(), "report.pdf", strings.NewReader("file contents"))
		require.NoError(t, err)
		assert.False(t, result.Malware)
		assert.Equal(t, "/v2/scan", gotPath)
		assert.Equal(t, "file contents", gotFile)
		assert.Equal(t, "report.pdf", gotName)
	})

	t.Run("reports malware", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"malware": true, "reason": "Win.Test.EICAR_HDB-1"}`))
		})

		result, err := client.Scan(context.Background(), "eicar.txt", strings.NewReader("X5O!P%@AP"))
		require.NoError(t, err)
		assert.True(t, result.Malware)
		assert.Equal(t, "Win.Test.EICAR_HDB-1", result.Reason)
	})

	t.Run("non-2xx responses are errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "scanner unavailable", http.StatusBadGateway)
		})

		_, err := client.Scan(context.Background(), "a.txt", strings.NewReader("a"))
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
		assert.Contains(t, svcErr.Body, "scanner unavailable")
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})

		_, err := client.Scan(context.Background(), "a.txt", strings.NewReader("a"))
		assert.ErrorContains(t, err, "failed to decode antivirus response")
	})

	t.Run("response without a verdict is a service error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "scanner unavailable"}`))
		})

		result, err := client.Scan(context.Background(), "a.txt", strings.NewReader("a"))
		assert.Nil(t, result)
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusOK, svcErr.StatusCode)
		assert.Contains(t, svcErr.Body, "scanner unavailable")
	})

	t.Run("null verdict is a service error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"malware": null, "reason": ""}`))
		})

		_, err := client.Scan(context.Background(), "a.txt", strings.NewReader("a"))
		var svcErr *ServiceError
		assert.ErrorAs(t, err, &svcErr)
	})

	t.Run("missing service URL", func(t *testing.T) {
		client := NewClient(config.AntivirusConfig{}, nil)
		_, err := client.Scan(context.Background(), "a.txt", strings.NewReader("a"))
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

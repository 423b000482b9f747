package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_HonorsAPIURLFlag(t *testing.T) {
	t.Setenv(envAPIURL, "")

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/ask", r.URL.Path)

		var req AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "is surgery covered?", req.Question)
		assert.Equal(t, "s1", req.SessionID)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"summary":"covered","sources":[]}}`)
	}))
	defer srv.Close()

	root := newClientRoot(AskCmd())
	root.SetArgs([]string{"ask", "is surgery covered?", "--api-url", srv.URL, "--session", "s1"})

	require.NoError(t, root.Execute())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestAskCmd_ServerErrorSurfaces(t *testing.T) {
	t.Setenv(envAPIURL, "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"question cannot be empty"}`)
	}))
	defer srv.Close()

	root := newClientRoot(AskCmd())
	root.SetArgs([]string{"ask", "   ", "--api-url", srv.URL, "--session", "s1"})
	root.SilenceErrors = true
	root.SilenceUsage = true

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question cannot be empty")
}

package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honyaku/internal/config"
)

func sseServer(t *testing.T, lines []string, check func(r *http.Request, body []byte)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if check != nil {
			check(r, body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			_, _ = io.WriteString(w, line+"\n")
		}
	}))
}

func deltaLine(t *testing.T, content string) string {
	t.Helper()
	chunk := map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]any{"content": content}},
		},
	}
	b, err := json.Marshal(chunk)
	require.NoError(t, err)
	return "data: " + string(b)
}

func newTestClient(url string) *OpenAI {
	return NewOpenAI(config.ProviderConfig{
		BaseURL: url,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func drain(t *testing.T, s Stream) ([]string, error) {
	t.Helper()
	var frags []string
	for {
		frag, err := s.Recv()
		if err == io.EOF {
			return frags, nil
		}
		if err != nil {
			return frags, err
		}
		frags = append(frags, frag)
	}
}

func TestOpenAI_StreamsFragments(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	srv := sseServer(t, []string{
		deltaLine(t, "Ho"),
		"",
		deltaLine(t, "la"),
		"data: [DONE]",
	}, func(r *http.Request, body []byte) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody = body
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	stream, err := client.Stream(context.Background(), "gpt-4o-mini", "system prompt", "hello")
	require.NoError(t, err)
	defer stream.Close()

	frags, err := drain(t, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ho", "la"}, frags)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)

	var req chatRequest
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.True(t, req.Stream)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "system prompt", req.Messages[0].Content)
	assert.Equal(t, "hello", req.Messages[1].Content)
}

func TestOpenAI_SkipsEmptyDeltas(t *testing.T) {
	srv := sseServer(t, []string{
		deltaLine(t, ""),
		`data: {"choices":[]}`,
		deltaLine(t, "x"),
		"data: [DONE]",
	}, nil)
	defer srv.Close()

	stream, err := newTestClient(srv.URL).Stream(context.Background(), "m", "s", "t")
	require.NoError(t, err)
	defer stream.Close()

	frags, err := drain(t, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, frags)
}

func TestOpenAI_EOFWithoutDoneCompletes(t *testing.T) {
	srv := sseServer(t, []string{deltaLine(t, "a")}, nil)
	defer srv.Close()

	stream, err := newTestClient(srv.URL).Stream(context.Background(), "m", "s", "t")
	require.NoError(t, err)
	defer stream.Close()

	frags, err := drain(t, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, frags)
}

func TestOpenAI_NonOKStatusFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_api_key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Stream(context.Background(), "m", "s", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAI_MalformedChunkIsError(t *testing.T) {
	srv := sseServer(t, []string{"data: {not json"}, nil)
	defer srv.Close()

	stream, err := newTestClient(srv.URL).Stream(context.Background(), "m", "s", "t")
	require.NoError(t, err)
	defer stream.Close()

	_, err = drain(t, stream)
	assert.Error(t, err)
}

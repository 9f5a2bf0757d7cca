package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PayloadShape(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken123/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token123", "42", "", zerolog.Nop())
	tg.BaseURL = srv.URL

	require.NoError(t, tg.Send(context.Background(), "hello *world*"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello *world*", got["text"])
	assert.Equal(t, "Markdown", got["parse_mode"])
	assert.Equal(t, true, got["disable_web_page_preview"])
}

func TestSend_APIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token123", "42", "", zerolog.Nop())
	tg.BaseURL = srv.URL

	err := tg.Send(context.Background(), "x")
	assert.ErrorContains(t, err, "status 400")
}

func TestSendReport_DeliversAllParts(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token123", "42", "", zerolog.Nop())
	tg.BaseURL = srv.URL

	require.NoError(t, tg.SendReport(context.Background(), []string{"part 1", "part 2", "part 3"}))
	assert.Equal(t, 3, count)
}

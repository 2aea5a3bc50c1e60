package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaAdapter_Generate(t *testing.T) {
	t.Run("プロンプトを送信して生成テキストを受け取ります", func(t *testing.T) {
		var captured generateRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/generate", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			json.NewEncoder(w).Encode(generateResponse{
				Response: "Panel 1: a cat\nPanel 2: a butterfly",
				Done:     true,
			})
		}))
		defer srv.Close()

		a := NewOllamaAdapter(srv.URL, 5*time.Second)
		got, err := a.Generate(context.Background(), "split this story", "llama2")

		require.NoError(t, err)
		assert.Equal(t, "Panel 1: a cat\nPanel 2: a butterfly", got)
		assert.Equal(t, "llama2", captured.Model)
		assert.Equal(t, "split this story", captured.Prompt)
		assert.False(t, captured.Stream)
		assert.InDelta(t, 0.7, captured.Options.Temperature, 0.001)
		assert.InDelta(t, 0.9, captured.Options.TopP, 0.001)
	})

	t.Run("非200応答はエラーになります", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		a := NewOllamaAdapter(srv.URL, 5*time.Second)
		_, err := a.Generate(context.Background(), "prompt", "missing-model")
		assert.Error(t, err)
	})

	t.Run("タイムアウト超過はエラーになります", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		a := NewOllamaAdapter(srv.URL, 50*time.Millisecond)
		_, err := a.Generate(context.Background(), "prompt", "llama2")
		assert.Error(t, err)
	})

	t.Run("未設定のベースURLは専用のエラーを返します", func(t *testing.T) {
		a := NewOllamaAdapter("", 5*time.Second)
		_, err := a.Generate(context.Background(), "prompt", "llama2")
		assert.ErrorIs(t, err, ErrLLMNotConfigured)
	})
}

func TestOllamaAdapter_Available(t *testing.T) {
	t.Run("タグ一覧が返れば利用可能と判定します", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.Write([]byte(`{"models":[]}`))
		}))
		defer srv.Close()

		a := NewOllamaAdapter(srv.URL, 5*time.Second)
		assert.True(t, a.Available(context.Background()))
	})

	t.Run("到達不能なサービスは利用不可と判定します", func(t *testing.T) {
		a := NewOllamaAdapter("http://127.0.0.1:1", time.Second)
		assert.False(t, a.Available(context.Background()))
	})

	t.Run("未設定のベースURLは利用不可です", func(t *testing.T) {
		a := NewOllamaAdapter("", time.Second)
		assert.False(t, a.Available(context.Background()))
	})
}

func TestOllamaAdapter_Models(t *testing.T) {
	t.Run("インストール済みモデル名の一覧を返します", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"models":[{"name":"llama2"},{"name":"mistral"}]}`))
		}))
		defer srv.Close()

		a := NewOllamaAdapter(srv.URL, 5*time.Second)
		names, err := a.Models(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"llama2", "mistral"}, names)
	})
}

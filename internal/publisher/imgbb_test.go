package publisher

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopthelook/scout/internal/scouterrors"
)

func TestNewImgBBPublisher_MissingKey(t *testing.T) {
	_, err := NewImgBBPublisher("")
	require.Error(t, err)
	assert.ErrorIs(t, err, scouterrors.ErrConfiguration)

	var cfgErr *scouterrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "IMGBB_API_KEY", cfgErr.Variable)
}

func TestImgBBPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	t.Run("success returns hosted url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "test-key", r.Form.Get("key"))
			assert.Equal(t, "img-1", r.Form.Get("name"))
			assert.Equal(t, base64.StdEncoding.EncodeToString(image), r.Form.Get("image"))

			w.Write([]byte(`{"data":{"url":"https://i.ibb.co/abc/img-1.jpg"},"success":true}`))
		}))
		defer srv.Close()

		pub, err := NewImgBBPublisher("test-key", WithImgBBBaseURL(srv.URL))
		require.NoError(t, err)

		url, err := pub.Publish(ctx, "img-1", image)
		require.NoError(t, err)
		assert.Equal(t, "https://i.ibb.co/abc/img-1.jpg", url)
	})

	t.Run("non-success status raises UploadError with status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":{"message":"Invalid API key"}}`, http.StatusForbidden)
		}))
		defer srv.Close()

		pub, err := NewImgBBPublisher("bad-key", WithImgBBBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = pub.Publish(ctx, "img-1", image)
		require.Error(t, err)

		var upErr *scouterrors.UploadError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusForbidden, upErr.StatusCode)
		assert.Contains(t, upErr.Body, "Invalid API key")
	})

	t.Run("success without url in body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"data":{},"success":true}`))
		}))
		defer srv.Close()

		pub, err := NewImgBBPublisher("test-key", WithImgBBBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = pub.Publish(ctx, "img-1", image)
		assert.ErrorIs(t, err, ErrNoURLInResponse)
	})

	t.Run("empty image is rejected without a call", func(t *testing.T) {
		pub, err := NewImgBBPublisher("test-key", WithImgBBBaseURL("http://unreachable.invalid"))
		require.NoError(t, err)

		_, err = pub.Publish(ctx, "img-1", nil)
		assert.Error(t, err)
	})

	t.Run("upload is not retried on failure", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		pub, err := NewImgBBPublisher("test-key", WithImgBBBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = pub.Publish(ctx, "img-1", image)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestNewMinioPublisher_MissingConfig(t *testing.T) {
	_, err := NewMinioPublisher(context.Background(), MinioConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, scouterrors.ErrConfiguration)

	_, err = NewMinioPublisher(context.Background(), MinioConfig{Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, scouterrors.ErrConfiguration)
}

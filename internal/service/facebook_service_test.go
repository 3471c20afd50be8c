package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFallbackImage = "https://images.example.com/fallback.jpg"

func testConfig(baseURL string) config.Config {
	return config.Config{
		Graph: config.Graph{BaseURL: baseURL, APIVersion: "v21.0"},
		Instagram: config.Instagram{
			BaseURL:          baseURL,
			APIVersion:       "v21.0",
			FallbackImageURL: testFallbackImage,
			PollAttempts:     3,
			PollInterval:     time.Millisecond,
		},
		Publish: config.Publish{Timeout: 2 * time.Second, Concurrency: 5},
	}
}

// recordedRequest keeps the path and form of a request seen by a fake
// upstream.
type recordedRequest struct {
	Method string
	Path   string
	Form   url.Values
}

type fakeUpstream struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeUpstream) record(r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Form: r.Form})
}

func (f *fakeUpstream) calls(path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func facebookCred() models.PlatformCredential {
	return models.PlatformCredential{
		Platform:    models.PlatformFacebook,
		Enabled:     true,
		PageID:      "page1",
		AccessToken: "fb-token",
		AppSecret:   "fb-secret",
	}
}

func newFacebookUpstream(t *testing.T, handler http.HandlerFunc) (*fakeUpstream, *httptest.Server) {
	t.Helper()
	up := &fakeUpstream{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up.record(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return up, srv
}

func TestFacebookPublish_TextPostUsesFeed(t *testing.T) {
	up, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"page1_123"}`))
	})
	svc := NewFacebookService(testConfig(srv.URL), srv.Client())

	post := models.NormalizedPost{Platform: "Facebook", Type: models.PostTypeText, Text: "Hello", Hashtags: []string{"news"}}
	result := svc.Publish(context.Background(), post, facebookCred())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "page1_123", result.PostID)
	assert.Equal(t, models.StatePublished, result.State)

	calls := up.calls("/v21.0/page1/feed")
	require.Len(t, calls, 1)
	wantProof, err := utils.AppSecretProof("fb-token", "fb-secret")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n\n#news", calls[0].Form.Get("message"))
	assert.Equal(t, "fb-token", calls[0].Form.Get("access_token"))
	assert.Equal(t, wantProof, calls[0].Form.Get("appsecret_proof"))
}

func TestFacebookPublish_ImagePostUsesPhotos(t *testing.T) {
	up, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"photo1","post_id":"page1_456"}`))
	})
	svc := NewFacebookService(testConfig(srv.URL), srv.Client())

	post := models.NormalizedPost{Type: models.PostTypeImage, Text: "Look", ImageURL: "https://cdn.example.com/a.jpg"}
	result := svc.Publish(context.Background(), post, facebookCred())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "page1_456", result.PostID)

	calls := up.calls("/v21.0/page1/photos")
	require.Len(t, calls, 1)
	assert.Equal(t, "https://cdn.example.com/a.jpg", calls[0].Form.Get("url"))
	assert.Equal(t, "Look", calls[0].Form.Get("caption"))
}

func TestFacebookPublish_UpstreamErrorVerbatim(t *testing.T) {
	_, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"(#200) Permissions error","type":"OAuthException","code":200}}`))
	})
	svc := NewFacebookService(testConfig(srv.URL), srv.Client())

	result := svc.Publish(context.Background(), models.NormalizedPost{Type: models.PostTypeText, Text: "Hi"}, facebookCred())

	assert.False(t, result.Success)
	assert.Equal(t, "(#200) Permissions error", result.Error)
	assert.NotEmpty(t, result.Raw)
}

func TestFacebookPublish_NonJSONFailure(t *testing.T) {
	_, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})
	svc := NewFacebookService(testConfig(srv.URL), srv.Client())

	result := svc.Publish(context.Background(), models.NormalizedPost{Type: models.PostTypeText, Text: "Hi"}, facebookCred())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "502")
	assert.Nil(t, result.Raw)
}

func TestFacebookPublish_ProofRequired(t *testing.T) {
	up, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x"}`))
	})
	svc := NewFacebookService(testConfig(srv.URL), srv.Client())

	cred := facebookCred()
	cred.AppSecret = ""
	result := svc.Publish(context.Background(), models.NormalizedPost{Type: models.PostTypeText, Text: "Hi"}, cred)

	assert.False(t, result.Success)
	assert.Equal(t, utils.ErrProofUnavailable.Error(), result.Error)
	assert.Empty(t, up.calls("/v21.0/page1/feed"))
}

func TestFacebookPublish_MalformedPost(t *testing.T) {
	up, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x"}`))
	})
	svc := NewFacebookService(testConfig(srv.URL), srv.Client())

	result := svc.Publish(context.Background(), models.NormalizedPost{Type: models.PostTypeVideo, Text: "no video"}, facebookCred())

	assert.False(t, result.Success)
	assert.Equal(t, models.ErrMissingVideoURL.Error(), result.Error)
	assert.Empty(t, up.requests)
}

package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	platform models.Platform
	publish  func(ctx context.Context, post models.NormalizedPost) models.PublishResult
	calls    atomic.Int32
}

func (s *stubPublisher) Platform() models.Platform {
	return s.platform
}

func (s *stubPublisher) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	s.calls.Add(1)
	if s.publish != nil {
		return s.publish(ctx, post)
	}
	return models.PublishResult{Success: true, Platform: s.platform, PostID: string(s.platform) + "-1", State: models.StatePublished}
}

func succeeding(p models.Platform) *stubPublisher {
	return &stubPublisher{platform: p}
}

func failing(p models.Platform, msg string) *stubPublisher {
	return &stubPublisher{platform: p, publish: func(context.Context, models.NormalizedPost) models.PublishResult {
		return models.Failed(p, models.StateFailed, msg)
	}}
}

func allStubs() []Publisher {
	var out []Publisher
	for _, p := range models.Platforms {
		out = append(out, succeeding(p))
	}
	return out
}

// readyCreds returns complete, enabled credentials for the given platforms.
func readyCreds(platforms ...models.Platform) map[models.Platform]models.PlatformCredential {
	creds := make(map[models.Platform]models.PlatformCredential)
	for _, p := range platforms {
		creds[p] = models.PlatformCredential{
			Platform:          p,
			Enabled:           true,
			PageID:            "page",
			BusinessAccountID: "ig",
			ChannelID:         "UC",
			OrganizationID:    "org",
			AccessToken:       "token",
			AppSecret:         "secret",
		}
	}
	return creds
}

func textPost(text string) []models.NormalizedPost {
	return []models.NormalizedPost{{Type: models.PostTypeText, Text: text}}
}

func platformsOf(results []models.PublishResult) []models.Platform {
	out := make([]models.Platform, 0, len(results))
	for _, r := range results {
		out = append(out, r.Platform)
	}
	return out
}

func TestPublish_SelectsOnlyReadyPlatforms(t *testing.T) {
	disabled := readyCreds(models.PlatformLinkedIn)[models.PlatformLinkedIn]
	disabled.Enabled = false

	incomplete := readyCreds(models.PlatformFacebook)[models.PlatformFacebook]
	incomplete.AppSecret = ""

	noChannel := readyCreds(models.PlatformYouTube)[models.PlatformYouTube]
	noChannel.ChannelID = ""

	tests := []struct {
		name  string
		creds map[models.Platform]models.PlatformCredential
		want  []models.Platform
	}{
		{"none", map[models.Platform]models.PlatformCredential{}, []models.Platform{}},
		{"all ready", readyCreds(models.Platforms...), models.Platforms},
		{
			"mixed",
			map[models.Platform]models.PlatformCredential{
				models.PlatformFacebook:  incomplete,
				models.PlatformInstagram: readyCreds(models.PlatformInstagram)[models.PlatformInstagram],
				models.PlatformLinkedIn:  disabled,
				models.PlatformTikTok:    readyCreds(models.PlatformTikTok)[models.PlatformTikTok],
				models.PlatformYouTube:   noChannel,
			},
			[]models.Platform{models.PlatformInstagram, models.PlatformTikTok},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPublishService(testConfig(""), nil, nil, allStubs()...)

			summary := svc.Publish(context.Background(), textPost("Hello"), tt.creds)

			assert.Equal(t, tt.want, platformsOf(summary.Results))
			assert.Equal(t, len(tt.want), summary.Summary.Total)
		})
	}
}

func TestPublish_ReadinessFollowsMapKey(t *testing.T) {
	facebook := succeeding(models.PlatformFacebook)
	instagram := succeeding(models.PlatformInstagram)
	svc := NewPublishService(testConfig(""), nil, nil, facebook, instagram)

	summary := svc.Publish(context.Background(), textPost("Hello"), map[models.Platform]models.PlatformCredential{
		// Platform unset.
		models.PlatformFacebook: {Enabled: true},
		// Complete for YouTube, but stored under Instagram.
		models.PlatformInstagram: {Platform: models.PlatformYouTube, Enabled: true, ChannelID: "UC"},
	})

	assert.Equal(t, 0, summary.Summary.Total)
	assert.Empty(t, summary.Results)
	assert.Equal(t, int32(0), facebook.calls.Load())
	assert.Equal(t, int32(0), instagram.calls.Load())
}

func TestPublish_DispatchesCredentialUnderMapKey(t *testing.T) {
	var got models.PlatformCredential
	svc := NewPublishService(testConfig(""), nil, nil, &capturingPublisher{platform: models.PlatformTikTok, got: &got})

	summary := svc.Publish(context.Background(), textPost("Hello"), map[models.Platform]models.PlatformCredential{
		models.PlatformTikTok: {Platform: models.PlatformFacebook, Enabled: true, AccessToken: "tt"},
	})

	require.Equal(t, 1, summary.Summary.Total)
	assert.Equal(t, models.PlatformTikTok, got.Platform)
}

type capturingPublisher struct {
	platform models.Platform
	got      *models.PlatformCredential
}

func (c *capturingPublisher) Platform() models.Platform {
	return c.platform
}

func (c *capturingPublisher) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	*c.got = cred
	return models.PublishResult{Success: true, Platform: c.platform, State: models.StatePublished}
}

func TestPublish_PartialSuccess(t *testing.T) {
	svc := NewPublishService(testConfig(""), nil, nil,
		succeeding(models.PlatformFacebook),
		failing(models.PlatformInstagram, "bad token"),
		failing(models.PlatformYouTube, "quota"),
	)

	creds := readyCreds(models.PlatformFacebook, models.PlatformInstagram, models.PlatformYouTube)
	summary := svc.Publish(context.Background(), textPost("Hello"), creds)

	assert.True(t, summary.Success)
	assert.Equal(t, 3, summary.Summary.Total)
	assert.Equal(t, 1, summary.Summary.Successful)
	assert.Equal(t, 2, summary.Summary.Failed)
	assert.Equal(t, "1/3 platforms successful", summary.Message)
}

func TestPublish_AllFailed(t *testing.T) {
	svc := NewPublishService(testConfig(""), nil, nil, failing(models.PlatformTikTok, "nope"))

	summary := svc.Publish(context.Background(), textPost("Hello"), readyCreds(models.PlatformTikTok))

	assert.False(t, summary.Success)
	assert.Equal(t, 1, summary.Summary.Failed)
}

func TestPublish_NoPosts(t *testing.T) {
	stub := succeeding(models.PlatformFacebook)
	svc := NewPublishService(testConfig(""), nil, nil, stub)

	summary := svc.Publish(context.Background(), nil, readyCreds(models.PlatformFacebook))

	assert.False(t, summary.Success)
	assert.Equal(t, 0, summary.Summary.Total)
	assert.NotNil(t, summary.Results)
	assert.Zero(t, stub.calls.Load())
}

func TestPublish_PicksPostByPlatformHint(t *testing.T) {
	seen := make(chan string, 2)
	record := func(p models.Platform) *stubPublisher {
		return &stubPublisher{platform: p, publish: func(_ context.Context, post models.NormalizedPost) models.PublishResult {
			seen <- string(p) + ":" + post.Text
			return models.PublishResult{Success: true, Platform: p}
		}}
	}
	svc := NewPublishService(testConfig(""), nil, nil, record(models.PlatformFacebook), record(models.PlatformTikTok))

	posts := []models.NormalizedPost{
		{Type: models.PostTypeText, Text: "generic"},
		{Type: models.PostTypeText, Text: "for facebook", Platform: "Facebook"},
	}
	svc.Publish(context.Background(), posts, readyCreds(models.PlatformFacebook, models.PlatformTikTok))
	close(seen)

	var got []string
	for s := range seen {
		got = append(got, s)
	}
	assert.ElementsMatch(t, []string{"facebook:for facebook", "tiktok:generic"}, got)
}

func TestPublish_ResultsFollowPlatformOrder(t *testing.T) {
	delayed := func(p models.Platform, d time.Duration) *stubPublisher {
		return &stubPublisher{platform: p, publish: func(context.Context, models.NormalizedPost) models.PublishResult {
			time.Sleep(d)
			return models.PublishResult{Success: true, Platform: p}
		}}
	}
	svc := NewPublishService(testConfig(""), nil, nil,
		delayed(models.PlatformFacebook, 40*time.Millisecond),
		delayed(models.PlatformInstagram, 20*time.Millisecond),
		delayed(models.PlatformYouTube, 0),
	)

	creds := readyCreds(models.PlatformFacebook, models.PlatformInstagram, models.PlatformYouTube)
	summary := svc.Publish(context.Background(), textPost("Hello"), creds)

	assert.Equal(t, []models.Platform{models.PlatformFacebook, models.PlatformInstagram, models.PlatformYouTube}, platformsOf(summary.Results))
}

func TestPublish_TimeoutDoesNotBlockSiblings(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	hanging := &stubPublisher{platform: models.PlatformInstagram, publish: func(context.Context, models.NormalizedPost) models.PublishResult {
		<-block
		return models.PublishResult{Success: true, Platform: models.PlatformInstagram}
	}}

	cfg := testConfig("")
	cfg.Publish.Timeout = 50 * time.Millisecond
	reg := prometheus.NewRegistry()
	metrics := NewPublishMetrics(reg)
	svc := NewPublishService(cfg, nil, metrics, succeeding(models.PlatformFacebook), hanging)

	start := time.Now()
	summary := svc.Publish(context.Background(), textPost("Hello"), readyCreds(models.PlatformFacebook, models.PlatformInstagram))

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, summary.Results, 2)
	assert.True(t, summary.Results[0].Success)
	assert.False(t, summary.Results[1].Success)
	assert.Equal(t, "timeout", summary.Results[1].Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Attempts.WithLabelValues("instagram", "timeout")))
}

func TestPublish_ContextAwarePublisherTimesOut(t *testing.T) {
	waiting := &stubPublisher{platform: models.PlatformTikTok, publish: func(ctx context.Context, _ models.NormalizedPost) models.PublishResult {
		<-ctx.Done()
		return models.Failed(models.PlatformTikTok, models.StateFailed, ctx.Err().Error())
	}}

	cfg := testConfig("")
	cfg.Publish.Timeout = 20 * time.Millisecond
	svc := NewPublishService(cfg, nil, nil, waiting)

	summary := svc.Publish(context.Background(), textPost("Hello"), readyCreds(models.PlatformTikTok))

	require.Len(t, summary.Results, 1)
	assert.Equal(t, "timeout", summary.Results[0].Error)
}

func TestPublish_TimeoutWhileInstagramPollsKeepsContainerState(t *testing.T) {
	up, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v21.0/ig1/media":
			w.Write([]byte(`{"id":"container1"}`))
		case "/v21.0/container1":
			w.Write([]byte(`{"id":"container1","status_code":"IN_PROGRESS"}`))
		default:
			http.NotFound(w, r)
		}
	})

	cfg := testConfig(srv.URL)
	cfg.Publish.Timeout = 150 * time.Millisecond
	cfg.Instagram.PollAttempts = 100
	cfg.Instagram.PollInterval = 20 * time.Millisecond
	svc := NewPublishService(cfg, nil, nil, NewInstagramService(cfg, srv.Client()))

	posts := []models.NormalizedPost{{Type: models.PostTypeVideo, Text: "Clip", VideoURL: "https://v.example.com/a.mp4"}}
	creds := map[models.Platform]models.PlatformCredential{models.PlatformInstagram: instagramCred()}

	start := time.Now()
	summary := svc.Publish(context.Background(), posts, creds)

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, summary.Results, 1)
	assert.False(t, summary.Results[0].Success)
	assert.Equal(t, "timeout", summary.Results[0].Error)
	assert.Equal(t, models.StateContainerCreated, summary.Results[0].State)
	assert.Len(t, up.calls("/v21.0/ig1/media"), 1)
	assert.Empty(t, up.calls("/v21.0/ig1/media_publish"))
}

func TestPublish_TimeoutBeforeProgressIsPending(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	hanging := &stubPublisher{platform: models.PlatformFacebook, publish: func(context.Context, models.NormalizedPost) models.PublishResult {
		<-block
		return models.PublishResult{Success: true, Platform: models.PlatformFacebook}
	}}
	cfg := testConfig("")
	cfg.Publish.Timeout = 20 * time.Millisecond
	svc := NewPublishService(cfg, nil, nil, hanging)

	summary := svc.Publish(context.Background(), textPost("Hello"), readyCreds(models.PlatformFacebook))

	require.Len(t, summary.Results, 1)
	assert.Equal(t, models.StatePending, summary.Results[0].State)
}

func TestPublish_RecoversPanics(t *testing.T) {
	panicking := &stubPublisher{platform: models.PlatformLinkedIn, publish: func(context.Context, models.NormalizedPost) models.PublishResult {
		panic("boom")
	}}
	svc := NewPublishService(testConfig(""), nil, nil, panicking, succeeding(models.PlatformTikTok))

	summary := svc.Publish(context.Background(), textPost("Hello"), readyCreds(models.PlatformLinkedIn, models.PlatformTikTok))

	require.Len(t, summary.Results, 2)
	assert.False(t, summary.Results[0].Success)
	assert.Contains(t, summary.Results[0].Error, "boom")
	assert.True(t, summary.Results[1].Success)
}

func TestPublish_UnregisteredPlatform(t *testing.T) {
	svc := NewPublishService(testConfig(""), nil, nil, succeeding(models.PlatformFacebook))

	summary := svc.Publish(context.Background(), textPost("Hello"), readyCreds(models.PlatformFacebook, models.PlatformTikTok))

	require.Len(t, summary.Results, 2)
	assert.False(t, summary.Results[1].Success)
	assert.Contains(t, summary.Results[1].Error, "no publisher registered")
}

func TestPublish_SimulatedStubsAreFlagged(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPublishMetrics(reg)
	svc := NewPublishService(testConfig(""), nil, metrics, NewLinkedinService(), NewTiktokService())

	post := []models.NormalizedPost{{Type: models.PostTypeVideo, Text: "Clip", VideoURL: "https://v.example.com/a.mp4"}}
	summary := svc.Publish(context.Background(), post, readyCreds(models.PlatformLinkedIn, models.PlatformTikTok))

	require.Len(t, summary.Results, 2)
	for _, r := range summary.Results {
		assert.True(t, r.Success)
		assert.True(t, r.Simulated)
		assert.Contains(t, r.Message, "not yet implemented")
	}
	assert.Contains(t, string(summary.Results[1].Raw), `"media_type":"VIDEO"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Attempts.WithLabelValues("linkedin", "simulated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Attempts.WithLabelValues("tiktok", "simulated")))
}

func TestSimulatedStubsRejectMalformedPost(t *testing.T) {
	malformed := models.NormalizedPost{Type: models.PostTypeVideo, Text: "no video"}

	for _, p := range []Publisher{NewLinkedinService(), NewTiktokService()} {
		result := p.Publish(context.Background(), malformed, readyCreds(p.Platform())[p.Platform()])

		assert.False(t, result.Success, p.Platform())
		assert.False(t, result.Simulated, p.Platform())
		assert.Equal(t, models.ErrMissingVideoURL.Error(), result.Error)
	}
}

// Facebook ready, Instagram disabled, one Facebook text post.
func TestPublish_FacebookOnlyEndToEnd(t *testing.T) {
	up, srv := newFacebookUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"page1_1"}`))
	})
	cfg := testConfig(srv.URL)

	svc := NewPublishService(cfg, nil, nil,
		NewFacebookService(cfg, srv.Client()),
		NewInstagramService(cfg, srv.Client()),
	)

	ig := instagramCred()
	ig.Enabled = false
	creds := map[models.Platform]models.PlatformCredential{
		models.PlatformFacebook:  facebookCred(),
		models.PlatformInstagram: ig,
	}
	posts := []models.NormalizedPost{{Platform: "Facebook", Type: models.PostTypeText, Text: "Hello"}}

	summary := svc.Publish(context.Background(), posts, creds)

	assert.Equal(t, 1, summary.Summary.Total)
	assert.Equal(t, 1, summary.Summary.Successful)
	assert.Len(t, up.calls("/v21.0/page1/feed"), 1)
	assert.Empty(t, up.calls("/v21.0/ig1/media"))
}

func TestPublishStored(t *testing.T) {
	ctx := context.Background()
	creds := NewCredentialService(config.Config{SecretKey: testSecretKey}, repository.NewMemoryCredentialRepository())
	tiktok := readyCreds(models.PlatformTikTok)[models.PlatformTikTok]
	require.NoError(t, creds.Save(ctx, &tiktok))

	stub := &stubPublisher{platform: models.PlatformTikTok}
	stub.publish = func(context.Context, models.NormalizedPost) models.PublishResult {
		return models.PublishResult{Success: true, Platform: models.PlatformTikTok}
	}
	svc := NewPublishService(testConfig(""), creds, nil, stub)

	summary, err := svc.PublishStored(ctx, textPost("Hello"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Summary.Total)
	assert.Equal(t, int32(1), stub.calls.Load())
}

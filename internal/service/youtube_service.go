package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
	"github.com/maheshrc27/autopost/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubeCategoryPeopleBlogs = "22"
	youtubeTitleLimit          = 100
)

var (
	ErrChannelNotFound = errors.New("youtube channel not found")
	errOAuthIncomplete = errors.New("OAuth2 configuration is incomplete")
	errNoRefreshToken  = errors.New("refresh token is empty")
)

var youtubeScopes = []string{
	youtube.YoutubeUploadScope,
	youtube.YoutubeReadonlyScope,
}

type YoutubeService interface {
	Publisher
	ChannelInfo(ctx context.Context, channelID, apiKey string) (*transfer.YoutubeChannelInfo, error)
	AuthURL(state string) (string, error)
	YoutubeCallback(ctx context.Context, code string) error
	RefreshYoutubeToken(ctx context.Context, cred *models.PlatformCredential) error
}

type youtubeService struct {
	cfg      config.Config
	client   *http.Client
	creds    CredentialService
	endpoint oauth2.Endpoint
}

func NewYoutubeService(cfg config.Config, client *http.Client, creds CredentialService) YoutubeService {
	return &youtubeService{
		cfg:      cfg,
		client:   client,
		creds:    creds,
		endpoint: google.Endpoint,
	}
}

func (s *youtubeService) Platform() models.Platform {
	return models.PlatformYouTube
}

// Publish forwards text and image content to the RSS re-publisher and
// prepares upload metadata for videos. The binary upload is not performed.
func (s *youtubeService) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	if err := post.Validate(); err != nil {
		return models.Failed(s.Platform(), models.StateFailed, err.Error())
	}

	if post.VideoURL != "" {
		return s.prepareVideo(post, cred)
	}
	return s.forwardToRSS(ctx, post, cred)
}

func (s *youtubeService) prepareVideo(post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	if cred.AccessToken == "" {
		return models.PublishResult{
			Success:  true,
			Platform: s.Platform(),
			State:    models.StateAwaitingAuth,
			Message:  "YouTube video prepared, channel authorization pending",
			Instructions: []string{
				"Open /auth/youtube to connect the channel",
				"Publish the batch again once the channel is connected",
			},
		}
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			ChannelId:   cred.ChannelID,
			Title:       videoTitle(post),
			Description: post.Caption(),
			Tags:        videoTags(post.Hashtags),
			CategoryId:  youtubeCategoryPeopleBlogs,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	payload, err := json.Marshal(struct {
		Parts    []string       `json:"parts"`
		Video    *youtube.Video `json:"video"`
		MediaURL string         `json:"media_url"`
	}{
		Parts:    []string{"snippet", "status"},
		Video:    video,
		MediaURL: post.VideoURL,
	})
	if err != nil {
		return models.Failed(s.Platform(), models.StateFailed, err.Error())
	}

	return models.PublishResult{
		Success:  true,
		Platform: s.Platform(),
		State:    models.StateMetadataPrepared,
		Message:  "YouTube upload metadata prepared",
		Raw:      payload,
	}
}

func (s *youtubeService) forwardToRSS(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	if s.cfg.YouTube.RSSEndpoint == "" {
		return s.manualResult(post, "no RSS endpoint configured")
	}

	resp, raw, err := s.postRSS(ctx, transfer.YoutubeRSSRequest{
		ChannelID: cred.ChannelID,
		Title:     videoTitle(post),
		Content:   post.Caption(),
		ImageURL:  post.PrimaryImage(),
		Hashtags:  post.Hashtags,
	})
	if err != nil {
		slog.Warn("youtube rss forward failed", "error", err)
		return s.manualResult(post, err.Error())
	}

	return models.PublishResult{
		Success:  true,
		Platform: s.Platform(),
		PostID:   resp.ID,
		State:    models.StatePublished,
		Message:  "Forwarded to YouTube RSS feed",
		Raw:      raw,
	}
}

func (s *youtubeService) postRSS(ctx context.Context, body transfer.YoutubeRSSRequest) (*transfer.YoutubeRSSResponse, json.RawMessage, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.YouTube.RSSEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &transfer.StatusError{Platform: "YouTube RSS", StatusCode: resp.StatusCode}
	}

	var out transfer.YoutubeRSSResponse
	if len(raw) > 0 && json.Valid(raw) {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, nil, fmt.Errorf("error parsing response: %w", err)
		}
		return &out, raw, nil
	}
	return &out, nil, nil
}

// manualResult is still a success: YouTube has no API for community posts,
// so the operator finishes the post by hand.
func (s *youtubeService) manualResult(post models.NormalizedPost, reason string) models.PublishResult {
	return models.PublishResult{
		Success:  true,
		Platform: s.Platform(),
		State:    models.StateManualRequired,
		Message:  "Manual posting required on YouTube: " + reason,
		Instructions: []string{
			"Open YouTube Studio and sign in to the channel",
			"Select Create, then Create post",
			"Paste the caption: " + post.Caption(),
			"Attach the image if one was generated and publish",
		},
	}
}

// ChannelInfo looks up public channel statistics with an API key.
func (s *youtubeService) ChannelInfo(ctx context.Context, channelID, apiKey string) (*transfer.YoutubeChannelInfo, error) {
	if channelID == "" || apiKey == "" {
		return nil, errors.New("channel id and api key are required")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if s.cfg.YouTube.APIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(s.cfg.YouTube.APIEndpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error creating YouTube service: %w", err)
	}

	resp, err := svc.Channels.List([]string{"snippet", "statistics"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrChannelNotFound
	}

	ch := resp.Items[0]
	info := &transfer.YoutubeChannelInfo{ID: ch.Id}
	if ch.Snippet != nil {
		info.Title = ch.Snippet.Title
		info.Description = ch.Snippet.Description
		if ch.Snippet.Thumbnails != nil && ch.Snippet.Thumbnails.Default != nil {
			info.Thumbnail = ch.Snippet.Thumbnails.Default.Url
		}
	}
	if ch.Statistics != nil {
		info.SubscriberCount = ch.Statistics.SubscriberCount
		info.VideoCount = ch.Statistics.VideoCount
		info.ViewCount = ch.Statistics.ViewCount
	}
	return info, nil
}

func (s *youtubeService) oauthConfig() (*oauth2.Config, error) {
	conf := &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       youtubeScopes,
		Endpoint:     s.endpoint,
	}
	if conf.ClientID == "" || conf.ClientSecret == "" || conf.RedirectURL == "" {
		slog.Info(errOAuthIncomplete.Error())
		return nil, errOAuthIncomplete
	}
	return conf, nil
}

func (s *youtubeService) AuthURL(state string) (string, error) {
	conf, err := s.oauthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// YoutubeCallback exchanges the authorization code and stores the tokens on
// the YouTube credential, creating it when none exists yet.
func (s *youtubeService) YoutubeCallback(ctx context.Context, code string) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	conf, err := s.oauthConfig()
	if err != nil {
		return err
	}

	token, err := conf.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if token.RefreshToken == "" {
		slog.Info(errNoRefreshToken.Error())
		return errNoRefreshToken
	}

	err = s.creds.SetToken(ctx, models.PlatformYouTube, token.AccessToken, token.RefreshToken, token.Expiry)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		return s.creds.Save(ctx, &models.PlatformCredential{
			Platform:       models.PlatformYouTube,
			Enabled:        true,
			ChannelID:      s.ownChannelID(ctx, conf, token),
			AccessToken:    token.AccessToken,
			RefreshToken:   token.RefreshToken,
			TokenExpiresAt: token.Expiry,
		})
	}
	return err
}

// ownChannelID resolves the authorized channel. A failed lookup leaves the
// id for the operator to fill in.
func (s *youtubeService) ownChannelID(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) string {
	opts := []option.ClientOption{option.WithTokenSource(conf.TokenSource(s.oauthContext(ctx), token))}
	if s.cfg.YouTube.APIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(s.cfg.YouTube.APIEndpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		slog.Warn("youtube channel lookup skipped", "error", err)
		return ""
	}
	resp, err := svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil || len(resp.Items) == 0 {
		slog.Warn("youtube channel lookup failed", "error", err)
		return ""
	}
	return resp.Items[0].Id
}

func (s *youtubeService) RefreshYoutubeToken(ctx context.Context, cred *models.PlatformCredential) error {
	if cred.RefreshToken == "" {
		return errNoRefreshToken
	}

	conf, err := s.oauthConfig()
	if err != nil {
		return err
	}

	tokenSource := conf.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return s.creds.SetToken(ctx, models.PlatformYouTube, token.AccessToken, token.RefreshToken, token.Expiry)
}

func (s *youtubeService) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.client)
}

func videoTitle(post models.NormalizedPost) string {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		title = strings.TrimSpace(post.Text)
		if i := strings.IndexByte(title, '\n'); i >= 0 {
			title = title[:i]
		}
	}
	runes := []rune(title)
	if len(runes) > youtubeTitleLimit {
		title = string(runes[:youtubeTitleLimit])
	}
	return title
}

func videoTags(hashtags []string) []string {
	tags := make([]string, 0, len(hashtags))
	for _, h := range hashtags {
		h = strings.TrimLeft(strings.TrimSpace(h), "#")
		if h != "" {
			tags = append(tags, h)
		}
	}
	return tags
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeReels    MediaType = "REELS"
	MediaTypeStories  MediaType = "STORIES"
	MediaTypeCarousel MediaType = "CAROUSEL"
)

const (
	containerStatusFinished   = "FINISHED"
	containerStatusInProgress = "IN_PROGRESS"
	containerStatusError      = "ERROR"
	containerStatusExpired    = "EXPIRED"
	containerStatusPublished  = "PUBLISHED"
)

var (
	errInstagramCredential = errors.New("instagram credential requires business_account_id and access_token")
	errContainerNotReady   = errors.New("media container not ready for publishing")
	errNoMediaID           = errors.New("no media ID returned from Instagram")
)

type InstagramService interface {
	Publisher
}

type instagramService struct {
	cfg    config.Config
	client *http.Client
}

func NewInstagramService(cfg config.Config, client *http.Client) InstagramService {
	return &instagramService{
		cfg:    cfg,
		client: client,
	}
}

func (s *instagramService) Platform() models.Platform {
	return models.PlatformInstagram
}

// InferMediaType maps a post onto the container media type Instagram expects.
func InferMediaType(post models.NormalizedPost) MediaType {
	postType := post.EffectiveType()
	switch {
	case postType == models.PostTypeReel:
		return MediaTypeReels
	case postType == models.PostTypeStory:
		return MediaTypeStories
	case postType == models.PostTypeCarousel || len(post.Images) > 1:
		return MediaTypeCarousel
	case post.VideoURL != "":
		return MediaTypeVideo
	default:
		return MediaTypeImage
	}
}

// Publish runs the two phase container protocol: create a media container,
// then publish it by creation_id. A failure after the container exists leaves
// it unpublished upstream; Instagram has no endpoint to delete it and it
// expires on its own.
func (s *instagramService) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	platform := s.Platform()

	if cred.BusinessAccountID == "" || cred.AccessToken == "" {
		return models.Failed(platform, models.StatePending, errInstagramCredential.Error())
	}
	if err := post.Validate(); err != nil {
		return models.Failed(platform, models.StatePending, err.Error())
	}

	auth := url.Values{}
	auth.Set("access_token", cred.AccessToken)
	proof, err := utils.AppSecretProof(cred.AccessToken, cred.AppSecret)
	if err != nil {
		slog.Warn("publishing to instagram without appsecret_proof", "error", err)
	} else {
		auth.Set("appsecret_proof", proof)
	}

	mediaType := InferMediaType(post)

	containerID, raw, err := s.createContainer(ctx, cred.BusinessAccountID, auth, post, mediaType)
	if err != nil {
		slog.Info("instagram container creation failed", "media_type", mediaType, "error", err)
		result := models.Failed(platform, models.StateFailed, upstreamMessage(err))
		result.Raw = raw
		return result
	}
	reportState(ctx, models.StateContainerCreated)

	if needsProcessing(post, mediaType) {
		if err := s.waitForContainer(ctx, containerID, auth); err != nil {
			s.abandonContainer(containerID, err)
			return models.Failed(platform, models.StateContainerCreated, upstreamMessage(err))
		}
	}

	mediaID, raw, err := s.publishContainer(ctx, cred.BusinessAccountID, containerID, auth)
	if err != nil {
		s.abandonContainer(containerID, err)
		result := models.Failed(platform, models.StateContainerCreated, upstreamMessage(err))
		result.Raw = raw
		return result
	}

	return models.PublishResult{
		Success:  true,
		Platform: platform,
		PostID:   mediaID,
		State:    models.StatePublished,
		Message:  fmt.Sprintf("Published to Instagram as %s", mediaType),
		Raw:      raw,
	}
}

func (s *instagramService) createContainer(ctx context.Context, accountID string, auth url.Values, post models.NormalizedPost, mediaType MediaType) (string, json.RawMessage, error) {
	params := cloneValues(auth)
	caption := post.Caption()

	switch mediaType {
	case MediaTypeCarousel:
		children, err := s.createCarouselChildren(ctx, accountID, auth, post.Images)
		if err != nil {
			return "", nil, err
		}
		params.Set("media_type", string(MediaTypeCarousel))
		params.Set("children", strings.Join(children, ","))
		params.Set("caption", caption)

	case MediaTypeReels, MediaTypeVideo:
		params.Set("media_type", string(mediaType))
		params.Set("video_url", post.VideoURL)
		params.Set("caption", caption)
		if mediaType == MediaTypeReels {
			params.Set("share_to_feed", "true")
		}

	case MediaTypeStories:
		params.Set("media_type", string(MediaTypeStories))
		if post.VideoURL != "" {
			params.Set("video_url", post.VideoURL)
		} else {
			params.Set("image_url", s.imageOrFallback(post))
		}

	default:
		params.Set("image_url", s.imageOrFallback(post))
		params.Set("caption", caption)
		if post.AltText != "" {
			params.Set("alt_text", post.AltText)
		}
		if tags := userTags(post.UserTags); tags != "" {
			params.Set("user_tags", tags)
		}
	}

	if post.LocationID != "" && mediaType != MediaTypeStories {
		params.Set("location_id", post.LocationID)
	}

	endpoint := graphURL(s.cfg.Instagram.BaseURL, s.cfg.Instagram.APIVersion, accountID, "media")

	var out transfer.InstagramMediaResponse
	raw, err := graphCall(ctx, s.client, "Instagram", http.MethodPost, endpoint, params, &out)
	if err != nil {
		return "", raw, err
	}
	if out.ID == "" {
		return "", raw, errNoMediaID
	}
	return out.ID, raw, nil
}

func (s *instagramService) createCarouselChildren(ctx context.Context, accountID string, auth url.Values, images []string) ([]string, error) {
	endpoint := graphURL(s.cfg.Instagram.BaseURL, s.cfg.Instagram.APIVersion, accountID, "media")

	children := make([]string, 0, len(images))
	for i, image := range images {
		params := cloneValues(auth)
		params.Set("image_url", image)
		params.Set("is_carousel_item", "true")

		var out transfer.InstagramMediaResponse
		if _, err := graphCall(ctx, s.client, "Instagram", http.MethodPost, endpoint, params, &out); err != nil {
			return nil, err
		}
		if out.ID == "" {
			return nil, fmt.Errorf("carousel item %d: %w", i, errNoMediaID)
		}
		children = append(children, out.ID)
	}
	return children, nil
}

// waitForContainer polls the container until Instagram finished processing
// the uploaded video.
func (s *instagramService) waitForContainer(ctx context.Context, containerID string, auth url.Values) error {
	endpoint := graphURL(s.cfg.Instagram.BaseURL, s.cfg.Instagram.APIVersion, containerID)
	params := cloneValues(auth)
	params.Set("fields", "status_code,status")

	for i := 0; i < s.cfg.Instagram.PollAttempts; i++ {
		var status transfer.InstagramContainerStatus
		if _, err := graphCall(ctx, s.client, "Instagram", http.MethodGet, endpoint, params, &status); err != nil {
			return err
		}

		switch status.StatusCode {
		case containerStatusFinished, containerStatusPublished:
			return nil
		case containerStatusError:
			return fmt.Errorf("container error: %s", status.Status)
		case containerStatusExpired:
			return errors.New("container expired")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.Instagram.PollInterval):
		}
	}
	return errContainerNotReady
}

func (s *instagramService) publishContainer(ctx context.Context, accountID, containerID string, auth url.Values) (string, json.RawMessage, error) {
	endpoint := graphURL(s.cfg.Instagram.BaseURL, s.cfg.Instagram.APIVersion, accountID, "media_publish")

	params := cloneValues(auth)
	params.Set("creation_id", containerID)

	var out transfer.InstagramMediaResponse
	raw, err := graphCall(ctx, s.client, "Instagram", http.MethodPost, endpoint, params, &out)
	if err != nil {
		return "", raw, err
	}
	if out.ID == "" {
		return "", raw, errNoMediaID
	}
	return out.ID, raw, nil
}

func (s *instagramService) abandonContainer(containerID string, cause error) {
	slog.Warn("instagram container left unpublished",
		"container_id", containerID,
		"error", cause,
	)
}

func (s *instagramService) imageOrFallback(post models.NormalizedPost) string {
	if image := post.PrimaryImage(); image != "" {
		return image
	}
	return s.cfg.Instagram.FallbackImageURL
}

func needsProcessing(post models.NormalizedPost, mediaType MediaType) bool {
	switch mediaType {
	case MediaTypeVideo, MediaTypeReels:
		return true
	case MediaTypeStories:
		return post.VideoURL != ""
	}
	return false
}

func userTags(usernames []string) string {
	if len(usernames) == 0 {
		return ""
	}
	tags := make([]transfer.InstagramUserTag, 0, len(usernames))
	for _, u := range usernames {
		u = strings.TrimPrefix(strings.TrimSpace(u), "@")
		if u == "" {
			continue
		}
		tags = append(tags, transfer.InstagramUserTag{Username: u, X: 0.5, Y: 0.5})
	}
	if len(tags) == 0 {
		return ""
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

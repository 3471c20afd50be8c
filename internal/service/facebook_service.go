package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
)

var errFacebookCredential = errors.New("facebook credential requires page_id and access_token")

type FacebookService interface {
	Publisher
}

type facebookService struct {
	cfg    config.Config
	client *http.Client
}

func NewFacebookService(cfg config.Config, client *http.Client) FacebookService {
	return &facebookService{
		cfg:    cfg,
		client: client,
	}
}

func (s *facebookService) Platform() models.Platform {
	return models.PlatformFacebook
}

// Publish posts to the page feed, photos or videos edge depending on the
// post's media. The appsecret_proof is mandatory for page tokens.
func (s *facebookService) Publish(ctx context.Context, post models.NormalizedPost, cred models.PlatformCredential) models.PublishResult {
	platform := s.Platform()

	if err := post.Validate(); err != nil {
		return models.Failed(platform, models.StateFailed, err.Error())
	}
	if cred.PageID == "" || cred.AccessToken == "" {
		return models.Failed(platform, models.StateFailed, errFacebookCredential.Error())
	}

	proof, err := utils.AppSecretProof(cred.AccessToken, cred.AppSecret)
	if err != nil {
		slog.Warn("facebook publish aborted", "error", err)
		return models.Failed(platform, models.StateFailed, err.Error())
	}

	params := url.Values{}
	params.Set("access_token", cred.AccessToken)
	params.Set("appsecret_proof", proof)

	caption := post.Caption()
	var edge string
	switch {
	case post.VideoURL != "":
		edge = "videos"
		params.Set("file_url", post.VideoURL)
		params.Set("description", caption)
		if post.Title != "" {
			params.Set("title", post.Title)
		}
	case post.PrimaryImage() != "":
		edge = "photos"
		params.Set("url", post.PrimaryImage())
		params.Set("caption", caption)
	default:
		edge = "feed"
		params.Set("message", caption)
	}

	endpoint := graphURL(s.cfg.Graph.BaseURL, s.cfg.Graph.APIVersion, cred.PageID, edge)

	var out transfer.FacebookPostResponse
	raw, err := graphCall(ctx, s.client, "Facebook", http.MethodPost, endpoint, params, &out)
	if err != nil {
		slog.Info("facebook publish failed", "edge", edge, "error", err)
		result := models.Failed(platform, models.StateFailed, upstreamMessage(err))
		result.Raw = raw
		return result
	}

	postID := out.PostID
	if postID == "" {
		postID = out.ID
	}

	return models.PublishResult{
		Success:  true,
		Platform: platform,
		PostID:   postID,
		State:    models.StatePublished,
		Message:  "Published to Facebook",
		Raw:      raw,
	}
}

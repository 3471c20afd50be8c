package models

import (
	"errors"
	"fmt"
	"strings"
)

type PostType string

const (
	PostTypeText     PostType = "text"
	PostTypeImage    PostType = "image"
	PostTypeVideo    PostType = "video"
	PostTypeCarousel PostType = "carousel"
	PostTypeReel     PostType = "reel"
	PostTypeStory    PostType = "story"
)

var (
	ErrUnknownPostType = errors.New("unknown post type")
	ErrMissingVideoURL = errors.New("video url is required for this post type")
	ErrMissingImageURL = errors.New("image url is required for image posts")
	ErrCarouselImages  = errors.New("carousel posts require at least two images")
)

// NormalizedPost is the platform agnostic content handed to publishers.
type NormalizedPost struct {
	Text       string   `json:"text"`
	Platform   string   `json:"platform,omitempty"`
	Type       PostType `json:"type"`
	Title      string   `json:"title,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	VideoURL   string   `json:"video_url,omitempty"`
	Images     []string `json:"images,omitempty"`
	Hashtags   []string `json:"hashtags,omitempty"`
	AltText    string   `json:"alt_text,omitempty"`
	LocationID string   `json:"location_id,omitempty"`
	UserTags   []string `json:"user_tags,omitempty"`
}

// EffectiveType returns Type, or when it is empty the type implied by the
// media fields.
func (p NormalizedPost) EffectiveType() PostType {
	if p.Type != "" {
		return p.Type
	}
	switch {
	case p.VideoURL != "":
		return PostTypeVideo
	case len(p.Images) > 1:
		return PostTypeCarousel
	case p.PrimaryImage() != "":
		return PostTypeImage
	}
	return PostTypeText
}

// Validate checks that the media fields required by the post type are
// present.
func (p NormalizedPost) Validate() error {
	switch p.EffectiveType() {
	case PostTypeText, PostTypeStory:
		return nil
	case PostTypeImage:
		if p.PrimaryImage() == "" {
			return ErrMissingImageURL
		}
	case PostTypeVideo, PostTypeReel:
		if p.VideoURL == "" {
			return ErrMissingVideoURL
		}
	case PostTypeCarousel:
		if len(p.Images) < 2 {
			return ErrCarouselImages
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPostType, p.Type)
	}
	return nil
}

// PrimaryImage returns ImageURL, falling back to the first carousel image.
func (p NormalizedPost) PrimaryImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Caption renders the text followed by the hashtags.
func (p NormalizedPost) Caption() string {
	tags := make([]string, 0, len(p.Hashtags))
	seen := make(map[string]struct{}, len(p.Hashtags))
	for _, tag := range p.Hashtags {
		tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, "#"+tag)
	}

	text := strings.TrimSpace(p.Text)
	if len(tags) == 0 {
		return text
	}
	if text == "" {
		return strings.Join(tags, " ")
	}
	return text + "\n\n" + strings.Join(tags, " ")
}

// Targets reports whether the post's platform hint names p.
func (p NormalizedPost) Targets(platform Platform) bool {
	return strings.EqualFold(strings.TrimSpace(p.Platform), string(platform))
}

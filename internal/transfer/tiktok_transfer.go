package transfer

// TiktokPublishPreview describes what a direct post would send once the
// TikTok content posting integration exists.
type TiktokPublishPreview struct {
	Title      string   `json:"title"`
	Source     string   `json:"source"`
	MediaType  string   `json:"media_type"`
	VideoURL   string   `json:"video_url,omitempty"`
	PhotoURLs  []string `json:"photo_images,omitempty"`
	PrivacyLvl string   `json:"privacy_level"`
}

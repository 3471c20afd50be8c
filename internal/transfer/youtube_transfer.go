package transfer

type YoutubeChannelInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	SubscriberCount uint64 `json:"subscriber_count"`
	VideoCount      uint64 `json:"video_count"`
	ViewCount       uint64 `json:"view_count"`
}

// YoutubeRSSRequest is forwarded to the RSS re-publishing endpoint for
// content YouTube has no API for.
type YoutubeRSSRequest struct {
	ChannelID string   `json:"channel_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURL  string   `json:"image_url,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
}

type YoutubeRSSResponse struct {
	ID      string `json:"id"`
	Link    string `json:"link"`
	Message string `json:"message"`
}

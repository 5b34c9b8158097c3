package youtube

// Typed views over the YouTube Data API v3 payloads that the service needs
// to look inside. Pass-through routes never decode; they return the raw body.

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type Thumbnails map[string]Thumbnail

type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

type ResourceID struct {
	Kind      string `json:"kind,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
	VideoID   string `json:"videoId,omitempty"`
}

type SubscriptionSnippet struct {
	PublishedAt string     `json:"publishedAt,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ResourceID  ResourceID `json:"resourceId"`
	ChannelID   string     `json:"channelId,omitempty"`
	Thumbnails  Thumbnails `json:"thumbnails,omitempty"`
}

// Subscription is the user's follow relationship to a channel.
type Subscription struct {
	Kind    string              `json:"kind,omitempty"`
	Etag    string              `json:"etag,omitempty"`
	ID      string              `json:"id,omitempty"`
	Snippet SubscriptionSnippet `json:"snippet"`
}

// ChannelID is the subscribed channel, not the subscriber's.
func (s Subscription) ChannelID() string { return s.Snippet.ResourceID.ChannelID }

type SubscriptionListResponse struct {
	Kind          string         `json:"kind,omitempty"`
	Etag          string         `json:"etag,omitempty"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
	PageInfo      PageInfo       `json:"pageInfo"`
	Items         []Subscription `json:"items"`
}

type VideoID struct {
	Kind    string `json:"kind,omitempty"`
	VideoID string `json:"videoId"`
}

type VideoSnippet struct {
	PublishedAt          string     `json:"publishedAt"`
	ChannelID            string     `json:"channelId"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Thumbnails           Thumbnails `json:"thumbnails,omitempty"`
	ChannelTitle         string     `json:"channelTitle,omitempty"`
	LiveBroadcastContent string     `json:"liveBroadcastContent,omitempty"`
	PublishTime          string     `json:"publishTime,omitempty"`
}

// VideoItem is one search result of type video.
type VideoItem struct {
	Kind    string       `json:"kind,omitempty"`
	Etag    string       `json:"etag,omitempty"`
	ID      VideoID      `json:"id"`
	Snippet VideoSnippet `json:"snippet"`
}

type SearchListResponse struct {
	Kind          string      `json:"kind,omitempty"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
	PageInfo      PageInfo    `json:"pageInfo"`
	Items         []VideoItem `json:"items"`
}

type RelatedPlaylists struct {
	Likes        string `json:"likes,omitempty"`
	Uploads      string `json:"uploads,omitempty"`
	WatchHistory string `json:"watchHistory,omitempty"`
	WatchLater   string `json:"watchLater,omitempty"`
}

type Channel struct {
	ID             string `json:"id"`
	ContentDetails struct {
		RelatedPlaylists RelatedPlaylists `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

type ChannelListResponse struct {
	Items []Channel `json:"items"`
}

package motn

// Show is one search result from the streaming availability API.
// StreamingOptions is keyed by lowercase ISO 3166-1 alpha-2 country code.
type Show struct {
	ID               string                       `json:"id"`
	IMDBID           string                       `json:"imdbId"`
	TMDBID           string                       `json:"tmdbId"`
	ItemType         string                       `json:"itemType"`
	ShowType         string                       `json:"showType"`
	Title            string                       `json:"title"`
	OriginalTitle    string                       `json:"originalTitle"`
	Overview         string                       `json:"overview"`
	ReleaseYear      int                          `json:"releaseYear"`
	Runtime          int                          `json:"runtime"`
	StreamingOptions map[string][]StreamingOption `json:"streamingOptions"`
}

// StreamingOption is one way to watch a show through one service in one
// country. Type is one of "subscription", "buy", "rent", "addon".
type StreamingOption struct {
	Service        Service    `json:"service"`
	Type           string     `json:"type"`
	Addon          *Service   `json:"addon,omitempty"`
	Link           string     `json:"link"`
	VideoLink      string     `json:"videoLink,omitempty"`
	Quality        string     `json:"quality,omitempty"`
	Audios         []Locale   `json:"audios"`
	Subtitles      []Subtitle `json:"subtitles"`
	Price          *Price     `json:"price,omitempty"`
	ExpiresSoon    bool       `json:"expiresSoon"`
	ExpiresOn      int64      `json:"expiresOn,omitempty"`
	AvailableSince int64      `json:"availableSince"`
}

// Service identifies a streaming service or addon channel.
type Service struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HomePage string `json:"homePage,omitempty"`
}

// Locale is a language/region pair for audio tracks and subtitles.
type Locale struct {
	Language string `json:"language"`
	Region   string `json:"region,omitempty"`
}

// Subtitle describes one subtitle track.
type Subtitle struct {
	ClosedCaptions bool   `json:"closedCaptions"`
	Locale         Locale `json:"locale"`
}

// Price is the cost of a buy or rent option.
type Price struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

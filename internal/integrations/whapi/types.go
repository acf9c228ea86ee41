package whapi

// Envelope is the webhook payload delivered by the WhatsApp provider.
// The event name may also arrive in the X-Whapi-Event request header,
// which takes precedence over the body-declared name.
type Envelope struct {
	Event     Event     `json:"event"`
	ChannelID string    `json:"channel_id"`
	Messages  []Message `json:"messages"`
	Statuses  []Status  `json:"statuses"`
}

// Event identifies the webhook delivery type
type Event struct {
	Type  string `json:"type"`
	Event string `json:"event"`
}

// Message is a single WhatsApp message in a webhook batch. Exactly one of
// the content fields is expected to be populated; the normalizer picks the
// first one in a fixed priority order.
type Message struct {
	ID        string `json:"id"`
	FromMe    bool   `json:"from_me"`
	Type      string `json:"type"`
	ChatID    string `json:"chat_id"`
	Timestamp int64  `json:"timestamp"` // unix seconds
	From      string `json:"from"`
	FromName  string `json:"from_name"`

	Text     *TextContent     `json:"text,omitempty"`
	Image    *MediaContent    `json:"image,omitempty"`
	Video    *MediaContent    `json:"video,omitempty"`
	Audio    *MediaContent    `json:"audio,omitempty"`
	Voice    *MediaContent    `json:"voice,omitempty"`
	Document *MediaContent    `json:"document,omitempty"`
	Location *LocationContent `json:"location,omitempty"`
}

// TextContent is a plain text message body
type TextContent struct {
	Body string `json:"body"`
}

// MediaContent covers image/video/audio/voice/document payloads
type MediaContent struct {
	ID       string `json:"id"`
	Link     string `json:"link"`
	Caption  string `json:"caption"`
	MimeType string `json:"mime_type"`
	FileName string `json:"file_name"`
}

// LocationContent is a shared location
type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// Status is a delivery/read acknowledgment for a previously sent message
type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"` // sent, delivered, read, failed
}

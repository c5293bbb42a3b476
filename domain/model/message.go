package model

const (
	MaxSenderLength  = 100
	MaxMessageLength = 1000
	MinMessageLength = 1
)

type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	RoomID    string `json:"roomId"`
	Token     string `json:"token,omitempty"`
}

// RedactFor returns a copy whose token is kept only when it belongs to the caller.
func (m Message) RedactFor(callerToken string) Message {
	if callerToken == "" || m.Token != callerToken {
		m.Token = ""
	}
	return m
}

type MessagePage struct {
	Messages   []Message `json:"messages"`
	HasMore    bool      `json:"hasMore"`
	TotalCount int64     `json:"totalCount"`
}

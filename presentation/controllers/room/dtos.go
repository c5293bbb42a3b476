package room

type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

type TTLResponse struct {
	TTL int64 `json:"ttl"`
}

type EnterRoomResponse struct {
	RoomID  string `json:"roomId"`
	TTL     int64  `json:"ttl"`
	Members int    `json:"members"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

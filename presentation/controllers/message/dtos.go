package message

type SendMessageRequest struct {
	Sender string `json:"sender" binding:"max=100"`
	Text   string `json:"text" binding:"required,min=1,max=1000"`
}

type ListMessagesQuery struct {
	Limit  int `form:"limit" binding:"omitempty,gte=0"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

package cache

// Every room is spread over several keys that must expire together.
const (
	metaPrefix     = "meta:"
	messagesPrefix = "messages:"
	historyPrefix  = "history:"
)

func MetaKey(roomID string) string {
	return metaPrefix + roomID
}

func MessagesKey(roomID string) string {
	return messagesPrefix + roomID
}

func HistoryKey(roomID string) string {
	return historyPrefix + roomID
}

// SiblingKeys lists every constituent key of a room except its metadata hash.
// The bare room id key is reserved for realtime bookkeeping.
func SiblingKeys(roomID string) []string {
	return []string{MessagesKey(roomID), HistoryKey(roomID), roomID}
}

// RoomKeys lists every constituent key of a room, metadata first.
func RoomKeys(roomID string) []string {
	return append([]string{MetaKey(roomID)}, SiblingKeys(roomID)...)
}

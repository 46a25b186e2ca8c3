package chat

// ChangeType mirrors the row operation that produced a ChangeEvent.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
)

// AllMessagesTopic receives every chat_messages change regardless of conversation.
const AllMessagesTopic = "chat_messages"

// ChangeEvent is a row change on chat_messages delivered by the changefeed.
type ChangeEvent struct {
	Type    ChangeType
	Message Message
}

// MessagesTopic is the broker topic scoped to one conversation.
func MessagesTopic(id ConversationID) string {
	return AllMessagesTopic + ":conversation_id=eq." + id.String()
}

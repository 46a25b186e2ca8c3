package chat

// Participant captures conversation membership.
// Primary key: (ConversationID, UserID)
type Participant struct {
	ConversationID ConversationID `db:"conversation_id"`
	UserID         string         `db:"user_id"`
}

// Profile holds the public fields of a user exposed to the other participant.
type Profile struct {
	ID        string `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// FullName joins first and last name, skipping empty parts.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

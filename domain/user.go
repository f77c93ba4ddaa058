package domain

import "time"

// DefaultStatusText is assigned to freshly registered profiles.
const DefaultStatusText = "Hey there! I'm using pairchat"

// Presence is the ephemeral status of one user, owned by the presence
// tracker. It does not survive a process restart.
type Presence struct {
	Online     bool
	LastSeenAt time.Time
	TypingIn   ConversationID
}

// User is the durable profile record. Presence fields (online, typing,
// last seen) are owned by the presence tracker and are not part of it.
type User struct {
	ID          string
	Email       string
	DisplayName string
	AvatarRef   string
	StatusText  string
	Disabled    bool
	CreatedAt   time.Time
}

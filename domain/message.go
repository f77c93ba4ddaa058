package domain

import (
	"fmt"
	"time"

	"pairchat/errors"
)

// MessageID is a zero-padded decimal sequence number, unique within a
// conversation. Lexicographic order equals numeric order, which keeps
// Badger prefix scans naturally sorted.
type MessageID string

func NewMessageID(seq uint64) MessageID {
	return MessageID(fmt.Sprintf("%019d", seq))
}

// Content carries exactly one of a text body or a blob reference.
type Content struct {
	Body     string
	MediaRef string
}

func TextContent(body string) Content { return Content{Body: body} }

func MediaContent(ref string) Content { return Content{MediaRef: ref} }

func (c Content) IsMedia() bool { return c.MediaRef != "" }

func (c Content) Validate() error {
	if (c.Body == "") == (c.MediaRef == "") {
		return errors.ErrInvalidContent
	}
	return nil
}

// Preview is the short form shown in chat lists.
func (c Content) Preview() string {
	if c.IsMedia() {
		return "[photo]"
	}
	return c.Body
}

// Message is one entry of a conversation log. SentAt is server-assigned.
// Seen never reverts to false once set.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       string
	ReceiverID     string
	Body           string
	MediaRef       string
	SentAt         time.Time
	Seen           bool
}

func (m Message) Content() Content {
	return Content{Body: m.Body, MediaRef: m.MediaRef}
}

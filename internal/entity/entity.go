package entity

import "time"

// ID types are plain strings (UUIDv7 in production). Distinct types keep
// the foreign-key plumbing honest: a PostID cannot be passed where a
// UserID is expected.
type (
	UserID         string
	PostID         string
	AnswerID       string
	NotificationID string
)

// User is an account holder. The posts, answers and saved-post lists are
// reverse-index projections computed at read time from the owning side of
// each relation; they are never stored as duplicate state.
type User struct {
	ID           UserID
	Name         string
	Email        string
	PasswordHash string
	ImageURL     string
	Bio          string
	Posts        []PostID
	Answers      []AnswerID
	SavedPosts   []PostID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Post is a question posted by a user. Likes and Answers are projections,
// same as the User lists: Post.Answers always equals the set of answers
// whose PostID points back at this post, in answer order.
type Post struct {
	ID        PostID
	Title     string
	Question  string
	ImageURL  string
	Creator   UserID
	Likes     []UserID
	Answers   []AnswerID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Answer is a reply to a post.
//
// Author is a display-name snapshot captured when the answer is created.
// It is intentionally never re-synced after a profile rename: answers show
// the historical name they were published under.
type Answer struct {
	ID        AnswerID
	Text      string
	Author    string
	Creator   UserID
	PostID    PostID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotificationType discriminates what EntityID refers to.
type NotificationType string

const (
	// NotificationAnswer: EntityID is the AnswerID that triggered it.
	NotificationAnswer NotificationType = "answer"

	// NotificationLike: EntityID is the liked PostID.
	NotificationLike NotificationType = "like"
)

// Notification is the durable artifact of the fan-out engine.
//
// State machine: created unread, marked read by the receiver, deleted by
// the receiver or cascaded when the source entity goes away. Deleted is
// terminal.
type Notification struct {
	ID        NotificationID
	Type      NotificationType
	IsRead    bool
	Sender    UserID
	Receiver  UserID
	EntityID  string
	PostID    PostID
	CreatedAt time.Time
}

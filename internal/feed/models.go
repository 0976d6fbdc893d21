package feed

import "time"

// Post is the authoritative server-side record. A reply is a full Post
// whose ParentPostID references its parent; replies are assembled into
// threads at read time, not nested.
type Post struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Username       string    `json:"username"`
	UserAvatar     string    `json:"userAvatar,omitempty"`
	Text           string    `json:"text"`
	URL            string    `json:"url,omitempty"`
	Image          string    `json:"image,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Comments       []Comment `json:"comments"`
	Likes          []string  `json:"likes"`
	LikeCount      int       `json:"likeCount"`
	ParentPostID   string    `json:"parentPostId,omitempty"`
	ReplyingToUser string    `json:"replyingToUser,omitempty"`
	// Version is bumped server-side on every mutation and is the
	// primary merge key during client reconciliation.
	Version int64 `json:"version"`
}

// Comment is the legacy inline comment path, distinct from reply-posts.
// Immutable once created.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Thread is a post plus its direct (one-level) replies.
type Thread struct {
	Main          Post   `json:"main"`
	DirectReplies []Post `json:"directReplies"`
}

// LikeResult reports the post's like state after a toggle.
type LikeResult struct {
	LikeCount int  `json:"likes"`
	IsLiked   bool `json:"isLiked"`
}

// Event is the fan-out payload for post lifecycle changes.
type Event struct {
	Type string `json:"type"`
	Post Post   `json:"post"`
}

const (
	EventPostCreated = "postCreated"
	EventPostUpdated = "postUpdated"
)

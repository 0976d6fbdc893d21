package feed

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Danielopol/Metrosocial/internal/identity"
	"github.com/Danielopol/Metrosocial/internal/metrics"
)

// Broadcaster pushes an event payload to all connected clients.
// Delivery is best-effort; the stream hub satisfies this.
type Broadcaster interface {
	BroadcastAll(payload []byte)
}

// DefaultMaxPosts bounds in-memory retention. Oldest posts are evicted
// once the cap is exceeded.
const DefaultMaxPosts = 10000

// Store is the single in-memory authority for posts, replies, comments
// and likes. All mutations are serialized by one mutex; events are
// published inside the critical section so subscribers observe them in
// mutation order.
type Store struct {
	mu       sync.Mutex
	posts    map[string]*Post
	bus      Broadcaster
	maxPosts int
}

func NewStore(bus Broadcaster, maxPosts int) *Store {
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}
	return &Store{
		posts:    map[string]*Post{},
		bus:      bus,
		maxPosts: maxPosts,
	}
}

// CreateInput is the client-supplied part of a new post. Identity fields
// always come from the authenticated principal instead.
type CreateInput struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePost stores a new top-level post. At least one of text, url or
// image must be present.
func (s *Store) CreatePost(p identity.Principal, input CreateInput) (Post, error) {
	if input.ID == "" {
		return Post{}, fmt.Errorf("%w: missing post id", ErrValidation)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" && strings.TrimSpace(input.URL) == "" && input.Image == "" {
		return Post{}, fmt.Errorf("%w: post must include text, URL, or image", ErrValidation)
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	post := &Post{
		ID:         input.ID,
		UserID:     p.ID,
		Username:   p.Username,
		UserAvatar: p.Avatar,
		Text:       text,
		URL:        strings.TrimSpace(input.URL),
		Image:      input.Image,
		CreatedAt:  createdAt,
		Comments:   []Comment{},
		Likes:      []string{},
		Version:    1,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(post)
	metrics.PostsCreated.Inc()
	s.publish(EventPostCreated, post)
	return clone(post), nil
}

// CreateReply creates a new post linked to its parent. The parent is not
// mutated.
func (s *Store) CreateReply(parentPostID string, p identity.Principal, text string) (Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Post{}, fmt.Errorf("%w: reply text is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.posts[parentPostID]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, parentPostID)
	}

	reply := &Post{
		ID:             uuid.NewString(),
		UserID:         p.ID,
		Username:       p.Username,
		UserAvatar:     p.Avatar,
		Text:           text,
		CreatedAt:      time.Now(),
		Comments:       []Comment{},
		Likes:          []string{},
		ParentPostID:   parentPostID,
		ReplyingToUser: parent.Username,
		Version:        1,
	}
	s.insert(reply)
	metrics.PostsCreated.Inc()
	s.publish(EventPostCreated, reply)
	return clone(reply), nil
}

// AddComment appends an inline comment to a post. Append-only; insertion
// order is preserved.
func (s *Store) AddComment(postID string, p identity.Principal, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return Comment{}, fmt.Errorf("%w: %s", ErrNotFound, postID)
	}

	comment := Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		UserID:     p.ID,
		Username:   p.Username,
		UserAvatar: p.Avatar,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	post.Comments = append(post.Comments, comment)
	post.Version++
	s.publish(EventPostUpdated, post)
	return comment, nil
}

// ToggleLike applies a like or unlike. Idempotent: repeating an action is
// a no-op that still returns current state. LikeCount always equals
// len(Likes) afterwards.
func (s *Store) ToggleLike(postID, userID, action string) (LikeResult, error) {
	if action != "like" && action != "unlike" {
		return LikeResult{}, fmt.Errorf("%w: action must be like or unlike", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return LikeResult{}, fmt.Errorf("%w: %s", ErrNotFound, postID)
	}

	liked := contains(post.Likes, userID)
	switch {
	case action == "like" && !liked:
		post.Likes = append(post.Likes, userID)
		post.Version++
	case action == "unlike" && liked:
		post.Likes = remove(post.Likes, userID)
		post.Version++
	}
	post.LikeCount = len(post.Likes)

	s.publish(EventPostUpdated, post)
	return LikeResult{LikeCount: post.LikeCount, IsLiked: contains(post.Likes, userID)}, nil
}

// ListAll returns every post, newest first. Ties break by id so the
// ordering is reproducible.
func (s *Store) ListAll() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, clone(post))
	}
	sortNewestFirst(posts)
	return posts
}

// LatestByUser returns the most recent post authored by userID.
func (s *Store) LatestByUser(userID string) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *Post
	for _, post := range s.posts {
		if post.UserID != userID {
			continue
		}
		if latest == nil || post.CreatedAt.After(latest.CreatedAt) ||
			(post.CreatedAt.Equal(latest.CreatedAt) && post.ID > latest.ID) {
			latest = post
		}
	}
	if latest == nil {
		return Post{}, false
	}
	return clone(latest), true
}

// GetThread returns the post and its direct replies in chronological
// order (oldest first, the opposite of feed order).
func (s *Store) GetThread(postID string) (Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	main, ok := s.posts[postID]
	if !ok {
		return Thread{}, fmt.Errorf("%w: %s", ErrNotFound, postID)
	}

	replies := []Post{}
	for _, post := range s.posts {
		if post.ParentPostID == postID {
			replies = append(replies, clone(post))
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})

	return Thread{Main: clone(main), DirectReplies: replies}, nil
}

// GetComments returns a post's inline comments in insertion order.
func (s *Store) GetComments(postID string) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, postID)
	}
	comments := make([]Comment, len(post.Comments))
	copy(comments, post.Comments)
	return comments, nil
}

// Len reports the number of stored posts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// insert adds a post, evicting the oldest ones when the retention cap is
// exceeded. Caller holds the mutex.
func (s *Store) insert(post *Post) {
	s.posts[post.ID] = post
	for len(s.posts) > s.maxPosts {
		var oldest *Post
		for _, p := range s.posts {
			if oldest == nil || p.CreatedAt.Before(oldest.CreatedAt) ||
				(p.CreatedAt.Equal(oldest.CreatedAt) && p.ID < oldest.ID) {
				oldest = p
			}
		}
		delete(s.posts, oldest.ID)
	}
}

// publish marshals and broadcasts an event. Caller holds the mutex, which
// keeps event order equal to mutation order; the hub send is non-blocking.
func (s *Store) publish(eventType string, post *Post) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Post: clone(post)})
	if err != nil {
		log.Printf("feed: marshal %s event: %v", eventType, err)
		return
	}
	s.bus.BroadcastAll(payload)
}

func clone(p *Post) Post {
	out := *p
	out.Comments = make([]Comment, len(p.Comments))
	copy(out.Comments, p.Comments)
	out.Likes = make([]string, len(p.Likes))
	copy(out.Likes, p.Likes)
	return out
}

func sortNewestFirst(posts []Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

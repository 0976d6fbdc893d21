package client

import (
	"sort"
	"sync"

	"github.com/Danielopol/Metrosocial/internal/feed"
)

// FeedCache holds a client's view of the feed in two partitions: posts
// this client created (optimistic, kept across refreshes) and posts from
// the last server refresh plus live push updates. Reads merge the two by
// post id.
type FeedCache struct {
	mu     sync.Mutex
	local  map[string]feed.Post
	server map[string]feed.Post
}

func NewFeedCache() *FeedCache {
	return &FeedCache{
		local:  map[string]feed.Post{},
		server: map[string]feed.Post{},
	}
}

// AddLocal upserts an optimistic local post.
func (f *FeedCache) AddLocal(post feed.Post) {
	f.mu.Lock()
	f.local[post.ID] = post
	f.mu.Unlock()
}

// RemoveLocal rolls back an optimistic insert.
func (f *FeedCache) RemoveLocal(id string) {
	f.mu.Lock()
	delete(f.local, id)
	f.mu.Unlock()
}

// SetServer replaces the server partition wholesale with a full-refresh
// result. A stale response arriving late is still safe to apply: the
// merge rule is idempotent per post id.
func (f *FeedCache) SetServer(posts []feed.Post) {
	next := make(map[string]feed.Post, len(posts))
	for _, p := range posts {
		if p.ID != "" {
			next[p.ID] = p
		}
	}
	f.mu.Lock()
	f.server = next
	f.mu.Unlock()
}

// ApplyCreated handles a postCreated push: insert if the id is unknown,
// ignore the duplicate otherwise.
func (f *FeedCache) ApplyCreated(post feed.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.server[post.ID]; ok {
		return
	}
	f.server[post.ID] = post
}

// ApplyUpdated handles a postUpdated push: replace the stored post
// wholesale by id in every partition that has it.
func (f *FeedCache) ApplyUpdated(post feed.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.server[post.ID]; ok {
		f.server[post.ID] = post
	}
	if _, ok := f.local[post.ID]; ok {
		f.local[post.ID] = post
	}
}

// Get returns the merged view of a single post.
func (f *FeedCache) Get(id string) (feed.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	localPost, inLocal := f.local[id]
	serverPost, inServer := f.server[id]
	switch {
	case inLocal && inServer:
		return pick(localPost, serverPost), true
	case inLocal:
		return localPost, true
	case inServer:
		return serverPost, true
	default:
		return feed.Post{}, false
	}
}

// Posts returns the merged, de-duplicated feed, newest first.
func (f *FeedCache) Posts() []feed.Post {
	f.mu.Lock()
	merged := make(map[string]feed.Post, len(f.local)+len(f.server))
	for id, p := range f.local {
		merged[id] = p
	}
	for id, p := range f.server {
		if existing, ok := merged[id]; ok {
			merged[id] = pick(existing, p)
		} else {
			merged[id] = p
		}
	}
	f.mu.Unlock()

	posts := make([]feed.Post, 0, len(merged))
	for _, p := range merged {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts
}

// Timeline is the viewer's top-level feed: their own posts including
// their own replies, plus other users' posts that are not replies. Other
// users' replies only surface inside a thread view.
func (f *FeedCache) Timeline(viewerID string) []feed.Post {
	all := f.Posts()
	out := make([]feed.Post, 0, len(all))
	for _, p := range all {
		if p.UserID == viewerID || p.ParentPostID == "" {
			out = append(out, p)
		}
	}
	return out
}

// Thread assembles a one-level thread: the clicked post plus its direct
// replies, oldest first.
func (f *FeedCache) Thread(postID string) (feed.Thread, bool) {
	main, ok := f.Get(postID)
	if !ok {
		return feed.Thread{}, false
	}

	replies := []feed.Post{}
	for _, p := range f.Posts() {
		if p.ParentPostID == postID {
			replies = append(replies, p)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return feed.Thread{Main: main, DirectReplies: replies}, true
}

// SetLiked applies or reverts an optimistic like in every partition that
// holds the post, keeping likeCount equal to len(likes).
func (f *FeedCache) SetLiked(postID, userID string, liked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, partition := range []map[string]feed.Post{f.local, f.server} {
		post, ok := partition[postID]
		if !ok {
			continue
		}
		post.Likes = setMembership(post.Likes, userID, liked)
		post.LikeCount = len(post.Likes)
		partition[postID] = post
	}
}

// AppendComment adds a confirmed comment to the cached copies of its post.
func (f *FeedCache) AppendComment(comment feed.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, partition := range []map[string]feed.Post{f.local, f.server} {
		post, ok := partition[comment.PostID]
		if !ok {
			continue
		}
		comments := make([]feed.Comment, len(post.Comments), len(post.Comments)+1)
		copy(comments, post.Comments)
		post.Comments = append(comments, comment)
		partition[comment.PostID] = post
	}
}

// pick resolves two copies of the same post. A server-assigned version
// wins when the versions differ; with equal versions the copy with the
// longer comments array wins, server copy on ties (the original recency
// heuristic, kept as a fallback for unversioned payloads).
func pick(localPost, serverPost feed.Post) feed.Post {
	if localPost.Version != serverPost.Version {
		if serverPost.Version > localPost.Version {
			return serverPost
		}
		return localPost
	}
	if len(serverPost.Comments) >= len(localPost.Comments) {
		return serverPost
	}
	return localPost
}

func setMembership(ids []string, id string, member bool) []string {
	out := make([]string, 0, len(ids)+1)
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if member {
		out = append(out, id)
	}
	return out
}

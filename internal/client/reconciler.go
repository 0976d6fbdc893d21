package client

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Danielopol/Metrosocial/internal/feed"
	"github.com/Danielopol/Metrosocial/internal/identity"
	"github.com/Danielopol/Metrosocial/internal/location"
)

var dialFn = websocket.DefaultDialer.Dial

// Reconciler folds three uncoordinated inputs into one consistent feed:
// optimistic local edits, periodic full refreshes, and live push events.
// The refresh loop is the correctness backstop; push delivery is
// best-effort and lost events are never errors.
type Reconciler struct {
	api      Backend
	cache    *FeedCache
	self     identity.Principal
	interval time.Duration
	wsURL    string

	mu       sync.Mutex
	loc      *location.Location
	cancel   context.CancelFunc
	conn     *websocket.Conn
	wg       sync.WaitGroup
}

func NewReconciler(api Backend, self identity.Principal, interval time.Duration, wsURL string) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Reconciler{
		api:      api,
		cache:    NewFeedCache(),
		self:     self,
		interval: interval,
		wsURL:    wsURL,
	}
}

func (r *Reconciler) Cache() *FeedCache { return r.cache }

// SetLocation updates the position reported on each heartbeat.
func (r *Reconciler) SetLocation(loc location.Location) {
	r.mu.Lock()
	r.loc = &loc
	r.mu.Unlock()
}

// Start marks the user online, performs the initial refresh, then runs
// the interval refresh loop and the push consumer until Stop.
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.api.MarkOnline(ctx); err != nil {
		return err
	}

	if err := r.Refresh(ctx); err != nil {
		log.Printf("client: initial refresh: %v", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go r.refreshLoop(loopCtx)

	if r.wsURL != "" {
		r.wg.Add(1)
		go r.consumePush(loopCtx)
	}
	return nil
}

// Stop halts all periodic work and marks the user offline.
func (r *Reconciler) Stop(ctx context.Context) {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// The cancel must land before the connection snapshot: a dial still
	// in flight publishes its connection after this point and sees the
	// cancelled context, so either branch closes the connection.
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	r.wg.Wait()

	if err := r.api.MarkOffline(ctx); err != nil {
		log.Printf("client: mark offline: %v", err)
	}
}

func (r *Reconciler) refreshLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.heartbeat(ctx)
			if err := r.Refresh(ctx); err != nil {
				log.Printf("client: refresh: %v", err)
			}
		}
	}
}

func (r *Reconciler) heartbeat(ctx context.Context) {
	r.mu.Lock()
	loc := r.loc
	r.mu.Unlock()
	if loc == nil {
		return
	}
	if err := r.api.ReportLocation(ctx, *loc); err != nil {
		log.Printf("client: report location: %v", err)
	}
}

// Refresh pulls the full post set and replaces the server partition.
func (r *Reconciler) Refresh(ctx context.Context) error {
	posts, err := r.api.FetchPosts(ctx)
	if err != nil {
		return err
	}
	r.cache.SetServer(posts)
	return nil
}

func (r *Reconciler) consumePush(ctx context.Context) {
	defer r.wg.Done()

	for ctx.Err() == nil {
		conn, _, err := dialFn(r.wsURL, nil)
		if err != nil {
			log.Printf("client: push dial: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.interval):
			}
			continue
		}

		r.mu.Lock()
		r.conn = conn
		r.mu.Unlock()

		// Stop may have run while the dial was in flight and snapshotted
		// a nil connection; this one must be closed here or readEvents
		// would block forever with nothing left to unblock it.
		if ctx.Err() != nil {
			r.mu.Lock()
			if r.conn == conn {
				r.conn = nil
			}
			r.mu.Unlock()
			_ = conn.Close()
			return
		}

		r.readEvents(conn)

		r.mu.Lock()
		if r.conn == conn {
			r.conn = nil
		}
		r.mu.Unlock()
		_ = conn.Close()
	}
}

func (r *Reconciler) readEvents(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev feed.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Printf("client: bad push payload: %v", err)
			continue
		}
		r.HandleEvent(ev)
	}
}

// HandleEvent applies one push event to the cached feed.
func (r *Reconciler) HandleEvent(ev feed.Event) {
	switch ev.Type {
	case feed.EventPostCreated:
		r.cache.ApplyCreated(ev.Post)
	case feed.EventPostUpdated:
		r.cache.ApplyUpdated(ev.Post)
	}
}

// CreatePost inserts the post locally for immediate display, then
// confirms with the server, rolling the optimistic copy back when the
// call fails.
func (r *Reconciler) CreatePost(ctx context.Context, text, postURL, image string) (feed.Post, error) {
	input := feed.CreateInput{
		ID:        uuid.NewString(),
		Text:      text,
		URL:       postURL,
		Image:     image,
		CreatedAt: time.Now(),
	}
	optimistic := feed.Post{
		ID:         input.ID,
		UserID:     r.self.ID,
		Username:   r.self.Username,
		UserAvatar: r.self.Avatar,
		Text:       text,
		URL:        postURL,
		Image:      image,
		CreatedAt:  input.CreatedAt,
		Comments:   []feed.Comment{},
		Likes:      []string{},
	}
	r.cache.AddLocal(optimistic)

	confirmed, err := r.api.CreatePost(ctx, input)
	if err != nil {
		r.cache.RemoveLocal(input.ID)
		return feed.Post{}, err
	}
	r.cache.AddLocal(confirmed)
	return confirmed, nil
}

// CreateReply sends the reply and inserts the server's copy; the reply
// id is server-assigned, so there is no optimistic insert to roll back.
func (r *Reconciler) CreateReply(ctx context.Context, postID, text string) (feed.Post, error) {
	reply, err := r.api.CreateReply(ctx, postID, text)
	if err != nil {
		return feed.Post{}, err
	}
	r.cache.AddLocal(reply)
	return reply, nil
}

// AddComment sends the comment and appends the confirmed copy to the
// cached post.
func (r *Reconciler) AddComment(ctx context.Context, postID, text string) (feed.Comment, error) {
	comment, err := r.api.AddComment(ctx, postID, text)
	if err != nil {
		return feed.Comment{}, err
	}
	r.cache.AppendComment(comment)
	return comment, nil
}

// ToggleLike flips the viewer's like on a post, applying the change
// locally first and reverting it if the server rejects the call.
func (r *Reconciler) ToggleLike(ctx context.Context, postID string) error {
	post, ok := r.cache.Get(postID)
	if !ok {
		return feed.ErrNotFound
	}

	liked := false
	for _, id := range post.Likes {
		if id == r.self.ID {
			liked = true
			break
		}
	}

	action := "like"
	if liked {
		action = "unlike"
	}

	r.cache.SetLiked(postID, r.self.ID, !liked)

	if _, err := r.api.ToggleLike(ctx, postID, action); err != nil {
		r.cache.SetLiked(postID, r.self.ID, liked)
		return err
	}
	return nil
}

// Timeline returns the viewer's top-level feed.
func (r *Reconciler) Timeline() []feed.Post {
	return r.cache.Timeline(r.self.ID)
}

// Thread returns the one-level thread for a post.
func (r *Reconciler) Thread(postID string) (feed.Thread, bool) {
	return r.cache.Thread(postID)
}

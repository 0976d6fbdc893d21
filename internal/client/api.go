package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Danielopol/Metrosocial/internal/feed"
	"github.com/Danielopol/Metrosocial/internal/location"
)

// ErrTransient marks network or server failures that the reconciler
// absorbs and retries on the next cycle.
var ErrTransient = fmt.Errorf("transient network error")

// Backend is the server surface the reconciler depends on. *API is the
// real implementation; tests substitute fakes.
type Backend interface {
	FetchPosts(ctx context.Context) ([]feed.Post, error)
	CreatePost(ctx context.Context, input feed.CreateInput) (feed.Post, error)
	CreateReply(ctx context.Context, postID, text string) (feed.Post, error)
	AddComment(ctx context.Context, postID, text string) (feed.Comment, error)
	ToggleLike(ctx context.Context, postID, action string) (feed.LikeResult, error)
	LatestByUser(ctx context.Context, userID string) (*feed.Post, error)
	Nearby(ctx context.Context, lat, lng, radius float64) ([]location.NearbyUser, error)
	ReportLocation(ctx context.Context, loc location.Location) error
	MarkOnline(ctx context.Context) error
	MarkOffline(ctx context.Context) error
}

// API is a bearer-authenticated HTTP client for the MetroSocial server.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *API) FetchPosts(ctx context.Context) ([]feed.Post, error) {
	var out struct {
		Posts []feed.Post `json:"posts"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/posts/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (a *API) CreatePost(ctx context.Context, input feed.CreateInput) (feed.Post, error) {
	var out struct {
		Post feed.Post `json:"post"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/posts", input, &out); err != nil {
		return feed.Post{}, err
	}
	return out.Post, nil
}

func (a *API) CreateReply(ctx context.Context, postID, text string) (feed.Post, error) {
	var out struct {
		Post feed.Post `json:"post"`
	}
	body := map[string]string{"text": text}
	if err := a.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/replies", body, &out); err != nil {
		return feed.Post{}, err
	}
	return out.Post, nil
}

func (a *API) AddComment(ctx context.Context, postID, text string) (feed.Comment, error) {
	var out struct {
		Comment feed.Comment `json:"comment"`
	}
	body := map[string]string{"text": text}
	if err := a.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", body, &out); err != nil {
		return feed.Comment{}, err
	}
	return out.Comment, nil
}

func (a *API) ToggleLike(ctx context.Context, postID, action string) (feed.LikeResult, error) {
	var out feed.LikeResult
	body := map[string]string{"action": action}
	if err := a.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/like", body, &out); err != nil {
		return feed.LikeResult{}, err
	}
	return out, nil
}

func (a *API) LatestByUser(ctx context.Context, userID string) (*feed.Post, error) {
	var out struct {
		LatestPost *feed.Post `json:"latestPost"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/posts/user/"+url.PathEscape(userID)+"/latest", nil, &out); err != nil {
		return nil, err
	}
	return out.LatestPost, nil
}

func (a *API) Nearby(ctx context.Context, lat, lng, radius float64) ([]location.NearbyUser, error) {
	var out struct {
		Users []location.NearbyUser `json:"users"`
	}
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	if radius > 0 {
		query.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))
	}
	if err := a.do(ctx, http.MethodGet, "/api/location/nearby?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (a *API) ReportLocation(ctx context.Context, loc location.Location) error {
	body := map[string]location.Location{"location": loc}
	return a.do(ctx, http.MethodPost, "/api/location", body, nil)
}

func (a *API) MarkOnline(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/users/online", nil, nil)
}

func (a *API) MarkOffline(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/users/offline", nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return feed.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", feed.ErrValidation, msg)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Command seed populates a running MetroSocial server with fake users,
// locations and feed activity for local development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/Danielopol/Metrosocial/internal/client"
	"github.com/Danielopol/Metrosocial/internal/config"
	"github.com/Danielopol/Metrosocial/internal/feed"
	"github.com/Danielopol/Metrosocial/internal/identity"
	"github.com/Danielopol/Metrosocial/internal/location"
)

// defaultSecret mirrors the server's own config so seeding a
// default-configured server works without flags.
func defaultSecret() string {
	return config.Load().JWTSecret
}

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "server base URL")
	secret := flag.String("secret", defaultSecret(), "JWT secret the server was started with")
	users := flag.Int("users", 8, "number of fake users to seed")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	// cluster everyone around one downtown point so they show up in each
	// other's nearby queries
	centerLat := 40.7580
	centerLng := -73.9855

	var postIDs []string

	for i := 0; i < *users; i++ {
		principal := identity.Principal{
			ID:       uuid.NewString(),
			Username: gofakeit.Username(),
			Avatar:   gofakeit.ImageURL(128, 128),
		}
		token, err := identity.Sign(*secret, principal, 24*time.Hour)
		if err != nil {
			log.Fatalf("sign token for %s: %v", principal.Username, err)
		}
		api := client.NewAPI(*baseURL, token)

		if err := api.MarkOnline(ctx); err != nil {
			log.Fatalf("mark %s online: %v", principal.Username, err)
		}

		loc := location.Location{
			Latitude:  centerLat + gofakeit.Float64Range(-0.01, 0.01),
			Longitude: centerLng + gofakeit.Float64Range(-0.01, 0.01),
			Accuracy:  gofakeit.Float64Range(5, 50),
		}
		if err := api.ReportLocation(ctx, loc); err != nil {
			log.Printf("report location for %s: %v", principal.Username, err)
		}

		post, err := api.CreatePost(ctx, feed.CreateInput{
			ID:   uuid.NewString(),
			Text: gofakeit.Sentence(gofakeit.Number(4, 12)),
		})
		if err != nil {
			log.Printf("create post for %s: %v", principal.Username, err)
			continue
		}
		postIDs = append(postIDs, post.ID)
		log.Printf("seeded %s with post %s", principal.Username, post.ID)

		// interact with an earlier user's post now and then
		if len(postIDs) > 1 && gofakeit.Bool() {
			target := postIDs[gofakeit.Number(0, len(postIDs)-2)]
			if _, err := api.CreateReply(ctx, target, gofakeit.Sentence(6)); err != nil {
				log.Printf("reply to %s: %v", target, err)
			}
			if _, err := api.AddComment(ctx, target, gofakeit.Sentence(4)); err != nil {
				log.Printf("comment on %s: %v", target, err)
			}
			if _, err := api.ToggleLike(ctx, target, "like"); err != nil {
				log.Printf("like %s: %v", target, err)
			}
		}

		nearby, err := api.Nearby(ctx, loc.Latitude, loc.Longitude, 0)
		if err != nil {
			log.Printf("nearby for %s: %v", principal.Username, err)
		} else {
			log.Printf("%s sees %d nearby users", principal.Username, len(nearby))
		}
	}

	log.Printf("seeded %d users and %d posts", *users, len(postIDs))
}

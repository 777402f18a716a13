package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Seeds demo data through the running API: a handful of users, a few
// posts each, and some likes spread across the feed.

var baseURL = getenv("SEED_BASE_URL", "http://localhost:4000")

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	users := make([]credentials, 0, 4)
	tokens := make([]string, 0, 4)

	// 1. Register users and log them in.
	for i := 0; i < 4; i++ {
		u := credentials{Email: gofakeit.Email(), Password: "123456"}
		register(u)
		tokens = append(tokens, login(u))
		users = append(users, u)
	}

	// 2. Each user uploads an image and shares a couple of posts.
	postIDs := []string{}
	for _, token := range tokens {
		for i := 0; i < 2; i++ {
			imageURL := uploadImage(token)
			id := createPost(token, imageURL)
			postIDs = append(postIDs, id)
		}
	}

	// 3. Sprinkle likes: every user toggles a like on a few random posts.
	for _, token := range tokens {
		for i := 0; i < 3; i++ {
			toggleLike(token, postIDs[gofakeit.Number(0, len(postIDs)-1)])
		}
	}

	// 4. Fetch the feed as the first user and print a summary.
	fetchFeed(tokens[0])

	log.Printf("seeded %d users and %d posts", len(users), len(postIDs))
}

func register(u credentials) {
	body, _ := json.Marshal(u)
	resp, err := http.Post(baseURL+"/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("signup: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("signup: unexpected status %d", resp.StatusCode)
	}
	log.Printf("registered %s", u.Email)
}

func login(u credentials) string {
	body, _ := json.Marshal(u)
	resp, err := http.Post(baseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("login: decode: %v", err)
	}
	if out.AccessToken == "" {
		log.Fatal("login: no access token returned")
	}
	return out.AccessToken
}

func uploadImage(token string) string {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", fmt.Sprintf("%s.jpg", gofakeit.Word()))
	if err != nil {
		log.Fatalf("upload: form file: %v", err)
	}
	// Random bytes stand in for real image data.
	if _, err := part.Write([]byte(gofakeit.Sentence(64))); err != nil {
		log.Fatalf("upload: write: %v", err)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("upload: decode: %v", err)
	}
	return out.ImageURL
}

func createPost(token, imageURL string) string {
	tags := strings.Join([]string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()}, ", ")
	body, _ := json.Marshal(map[string]string{
		"image_url": imageURL,
		"caption":   gofakeit.Sentence(6),
		"tags":      tags,
	})

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("create post: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("create post: decode: %v", err)
	}
	log.Printf("created post %s", out.ID)
	return out.ID
}

func toggleLike(token, postID string) {
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/posts/"+postID+"/like", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("toggle like: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func fetchFeed(token string) {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("feed: %v", err)
	}
	defer resp.Body.Close()

	var feed []struct {
		ID    string `json:"id"`
		Likes int    `json:"likes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		log.Fatalf("feed: decode: %v", err)
	}
	for _, p := range feed {
		log.Printf("post %s has %d likes", p.ID, p.Likes)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

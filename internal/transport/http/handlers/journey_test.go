package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hireflow/internal/app/server"
	"hireflow/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func journeyConfig(t *testing.T) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return config.Config{
		DatabaseURL:         dbURL,
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		Environment:         "test",
		MigrationsDir:       filepath.Join("..", "..", "..", "..", "migrations"),
		RunMigrations:       true,
		RunSeed:             true,
		SeedAdminEmail:      "admin@test.local",
		SeedAdminPassword:   "ChangeMe123!",
		MaxBodyBytes:        1048576,
		MaxUploadBytes:      5 << 20,
		RateLimitPerMinute:  1000,
		BlobBackend:         config.BlobBackendLocal,
		BlobFolder:          "hr_onboarding",
		BlobLocalDir:        t.TempDir(),
		BlobPublicBaseURL:   "http://files.test",
		ChatEnforceContacts: true,
		EmailFrom:           "no-reply@test.local",
	}
}

func TestOnboardingAndChatJourney(t *testing.T) {
	cfg := journeyConfig(t)

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken, _ := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	hrEmail := fmt.Sprintf("hr-%d@example.com", suffix)
	hrID, hrPassword := createUser(t, client, ts.URL+"/api/v1/admin/users", adminToken, map[string]string{"name": "Journey HR", "email": hrEmail, "role": "hr"})
	hrToken, _ := login(t, client, ts.URL, hrEmail, hrPassword)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", suffix)
	employeeID, employeePassword := createUser(t, client, ts.URL+"/api/v1/hr/employees", hrToken, map[string]string{"name": "Journey Employee", "email": employeeEmail, "experienceLevel": "fresher"})
	employeeToken, _ := login(t, client, ts.URL, employeeEmail, employeePassword)

	conn := dialLive(t, ts.URL, employeeToken)
	defer conn.Close()
	for deadline := time.Now().Add(2 * time.Second); app.Hub.Connections(employeeID) == 0; {
		if time.Now().After(deadline) {
			t.Fatal("live session never joined")
		}
		time.Sleep(10 * time.Millisecond)
	}

	status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/chat/send", hrToken, map[string]string{"receiverId": employeeID, "message": "welcome aboard"})
	if status != http.StatusCreated {
		t.Fatalf("chat send failed: %d %s", status, body)
	}
	msg := waitForEvent(t, conn, "chat-message")
	if !strings.Contains(string(msg.Data), "welcome aboard") {
		t.Fatalf("unexpected live chat payload: %s", msg.Data)
	}

	var wg sync.WaitGroup
	for _, key := range []string{"aadhar", "pan"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/onboarding/upload", employeeToken, map[string]string{key: "https://files.example/" + key})
			if status != http.StatusOK {
				t.Errorf("upload %s failed: %d %s", key, status, body)
			}
		}(key)
	}
	wg.Wait()
	waitForEvent(t, conn, "notification")

	status, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/hr/employees/"+employeeID+"/status", hrToken, nil)
	if status != http.StatusOK {
		t.Fatalf("status failed: %d %s", status, body)
	}
	var view struct {
		Docs struct {
			CompletionPercent int `json:"completionPercent"`
			UploadedDocs      []struct {
				Key string `json:"key"`
			} `json:"uploadedDocs"`
		} `json:"docs"`
	}
	decodeData(t, body, &view)
	if len(view.Docs.UploadedDocs) != 2 || view.Docs.CompletionPercent != 25 {
		t.Fatalf("expected both concurrent uploads merged at 25%%, got %+v", view.Docs)
	}

	status, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/chat/unread-counts", employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("unread counts failed: %d %s", status, body)
	}
	var counts struct {
		Counts map[string]int `json:"counts"`
	}
	decodeData(t, body, &counts)
	if counts.Counts[hrID] != 1 {
		t.Fatalf("expected one unread message from hr, got %v", counts.Counts)
	}
}

func TestDuplicateEmployeeEmailRejected(t *testing.T) {
	cfg := journeyConfig(t)

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken, _ := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	email := fmt.Sprintf("dup-%d@example.com", time.Now().UnixNano())
	payload := map[string]string{"name": "Dup", "email": email}
	createUser(t, client, ts.URL+"/api/v1/admin/users", adminToken, payload)

	status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/admin/users", adminToken, payload)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d %s", status, body)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) (string, string) {
	t.Helper()
	status, body := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login failed: %d %s", status, body)
	}
	var data struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeData(t, body, &data)
	return data.Token, data.User.ID
}

func createUser(t *testing.T, client *http.Client, endpoint, token string, payload map[string]string) (string, string) {
	t.Helper()
	status, body := doJSON(t, client, http.MethodPost, endpoint, token, payload)
	if status != http.StatusCreated {
		t.Fatalf("create user failed: %d %s", status, body)
	}
	var data struct {
		Employee *struct {
			ID string `json:"id"`
		} `json:"employee"`
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
		TempPassword string `json:"tempPassword"`
	}
	decodeData(t, body, &data)
	if data.Employee != nil {
		return data.Employee.ID, data.TempPassword
	}
	if data.User == nil {
		t.Fatalf("create user returned no account: %s", body)
	}
	return data.User.ID, data.TempPassword
}

func doJSON(t *testing.T, client *http.Client, method, endpoint, token string, payload any) (int, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, buf.Bytes()
}

func decodeData(t *testing.T, body []byte, out any) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func dialLive(t *testing.T, baseURL, token string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/api/v1/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	return conn
}

func waitForEvent(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if f.Event == event {
			return f
		}
	}
}

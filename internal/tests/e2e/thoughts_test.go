//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Idahel/js-project-api/config"
	"github.com/Idahel/js-project-api/internal/db"
	"github.com/Idahel/js-project-api/internal/server"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d", "mongo"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForMongo(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mongo not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown(context.Background())
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown(context.Background())
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

type envelope struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
	Message  string          `json:"message"`
}

type accountResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"accessToken"`
}

type thoughtResponse struct {
	ID     string `json:"_id"`
	Hearts int    `json:"hearts"`
}

func TestThoughtLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()

	owner, err := signUp(baseURL, fmt.Sprintf("owner_%d", suffix))
	if err != nil {
		t.Fatalf("sign up owner: %v", err)
	}
	other, err := signUp(baseURL, fmt.Sprintf("other_%d", suffix))
	if err != nil {
		t.Fatalf("sign up other: %v", err)
	}

	var created thoughtResponse
	if err := call(http.MethodPost, baseURL+"/thoughts", owner.AccessToken, map[string]string{"message": "hello world"}, http.StatusCreated, &created); err != nil {
		t.Fatalf("create thought: %v", err)
	}
	if created.Hearts != 0 || created.ID == "" {
		t.Fatalf("unexpected created thought: %+v", created)
	}

	var liked thoughtResponse
	if err := call(http.MethodPatch, baseURL+"/thoughts/"+created.ID+"/like", "", nil, http.StatusOK, &liked); err != nil {
		t.Fatalf("like thought: %v", err)
	}
	if liked.Hearts != 1 {
		t.Fatalf("expected 1 heart, got %d", liked.Hearts)
	}

	var unliked thoughtResponse
	for i := 0; i < 2; i++ {
		if err := call(http.MethodPatch, baseURL+"/thoughts/"+created.ID, other.AccessToken, map[string]bool{"unlike": true}, http.StatusOK, &unliked); err != nil {
			t.Fatalf("unlike thought: %v", err)
		}
	}
	if unliked.Hearts != 0 {
		t.Fatalf("expected hearts floored at 0, got %d", unliked.Hearts)
	}

	if err := call(http.MethodDelete, baseURL+"/thoughts/"+created.ID, other.AccessToken, nil, http.StatusForbidden, nil); err != nil {
		t.Fatalf("delete as other user: %v", err)
	}
	if err := call(http.MethodDelete, baseURL+"/thoughts/"+created.ID, owner.AccessToken, nil, http.StatusOK, nil); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}
	if err := call(http.MethodGet, baseURL+"/thoughts/"+created.ID, "", nil, http.StatusNotFound, nil); err != nil {
		t.Fatalf("expected deleted thought to be missing: %v", err)
	}
}

func TestDuplicateSignUp(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	name := fmt.Sprintf("dup_%d", time.Now().UnixNano())

	if _, err := signUp(baseURL, name); err != nil {
		t.Fatalf("first sign up: %v", err)
	}
	body := map[string]string{"name": name, "email": name + "@example.com", "password": "secret123"}
	if err := call(http.MethodPost, baseURL+"/users", "", body, http.StatusConflict, nil); err != nil {
		t.Fatalf("second sign up: %v", err)
	}
}

func TestSeededListing(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)

	var page struct {
		Total    int               `json:"total"`
		PageSize int               `json:"pageSize"`
		Thoughts []thoughtResponse `json:"thoughts"`
	}
	if err := call(http.MethodGet, baseURL+"/thoughts?sort=hearts&limit=5", "", nil, http.StatusOK, &page); err != nil {
		t.Fatalf("list thoughts: %v", err)
	}
	if page.Total == 0 || page.PageSize != len(page.Thoughts) || page.PageSize > 5 {
		t.Fatalf("unexpected page: total=%d pageSize=%d len=%d", page.Total, page.PageSize, len(page.Thoughts))
	}
	for i := 1; i < len(page.Thoughts); i++ {
		if page.Thoughts[i].Hearts > page.Thoughts[i-1].Hearts {
			t.Fatalf("thoughts not sorted by hearts: %+v", page.Thoughts)
		}
	}
}

func signUp(baseURL, name string) (accountResponse, error) {
	var acc accountResponse
	body := map[string]string{"name": name, "email": name + "@example.com", "password": "secret123"}
	if err := call(http.MethodPost, baseURL+"/users", "", body, http.StatusCreated, &acc); err != nil {
		return accountResponse{}, err
	}
	if acc.AccessToken == "" {
		return accountResponse{}, fmt.Errorf("missing token in sign up response")
	}
	return acc, nil
}

// call sends body as JSON, checks the status and decodes the envelope's
// response into out when out is non-nil.
func call(method, url, token string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Response, out)
}

func testConfig() config.Config {
	_ = os.Setenv("PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("STORE_DRIVER", config.StoreMongo)
	_ = os.Setenv("MONGO_URL", "mongodb://localhost:27017/happyThoughtsE2E")
	_ = os.Setenv("RESET_DB", "true")
	_ = os.Setenv("LOG_LEVEL", "warn")
	return config.LoadConfig()
}

func waitForMongo(ctx context.Context) error {
	cfg := testConfig()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		database, err := db.OpenMongo(ctx, cfg.Mongo)
		if err == nil {
			return database.Client().Disconnect(context.Background())
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("mongo ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func startServer(ctx context.Context) (*server.Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	srv, err := server.New(ctx, testConfig(), logger)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}

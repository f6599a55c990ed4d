//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/api/handlers"
	"github.com/studyhall-ai/studyhall/internal/auth"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/jobs"
	"github.com/studyhall-ai/studyhall/internal/llm"
	"github.com/studyhall-ai/studyhall/internal/repository"
	"github.com/studyhall-ai/studyhall/internal/server"
	"github.com/studyhall-ai/studyhall/internal/service"
	"github.com/studyhall-ai/studyhall/internal/testutil"
)

// jwtSecret signs every bearer token minted for E2E runs
const jwtSecret = "e2e-test-secret"

const embeddingDims = 3072

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	CourseID     string
	CourseCode   string
	StudentToken string
	TAToken      string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment: a database container and an
// in-process API server wired to stubbed model providers
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	// Start PostgreSQL container
	pgC := testutil.NewPostgresContainer(ctx, t)

	// Create connection pool and run migrations
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	// Find free port for server
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	// Start HTTP server
	serverURL, serverCloser := startServer(t, pool, port)

	env := &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	// Clean up binaries
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Bootstrap creates a course, a TA account, and bearer tokens for one student
// and one TA. The student is provisioned on first request; the TA row is
// created up front because provisioning never grants reviewer roles.
func (e *E2ETestEnv) Bootstrap() {
	now := time.Now().UTC()

	course := domain.NewCourse(uuid.NewString(), "Operating Systems", "CS-350", "", now)
	if err := repository.NewCourseRepository(e.Pool).Create(e.Ctx, course); err != nil {
		e.T.Fatalf("failed to create course: %v", err)
	}
	e.CourseID = course.ID
	e.CourseCode = course.Code

	ta := domain.NewUser(uuid.NewString(), "e2e-ta", "ta@example.edu", domain.UserRoleTA, now)
	if _, err := repository.NewUserRepository(e.Pool).Upsert(e.Ctx, ta); err != nil {
		e.T.Fatalf("failed to create TA user: %v", err)
	}

	var err error
	e.StudentToken, err = auth.GenerateToken(jwtSecret, "e2e-student", "student@example.edu", time.Hour)
	if err != nil {
		e.T.Fatalf("failed to mint student token: %v", err)
	}
	e.TAToken, err = auth.GenerateToken(jwtSecret, "e2e-ta", "ta@example.edu", time.Hour)
	if err != nil {
		e.T.Fatalf("failed to mint TA token: %v", err)
	}
}

// RunEmbeddings drains the embedding queue, filling vectors for every chunked
// document with the stubbed embedder
func (e *E2ETestEnv) RunEmbeddings() {
	worker := jobs.NewEmbeddingWorker(
		repository.NewCourseDocumentRepository(e.Pool),
		repository.NewChunkRepository(e.Pool),
		&stubModel{},
		0, 0,
	)
	if err := worker.ProcessPending(e.Ctx); err != nil {
		e.T.Fatalf("failed to process pending embeddings: %v", err)
	}
}

// BuildBinaries builds the studyhall and studyhalld binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "studyhall-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	// Build studyhalld
	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "studyhalld"), "./cmd/studyhalld")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build studyhalld: %v\n%s", err, out)
	}

	// Build studyhall
	cmd = exec.Command("go", "build", "-o", filepath.Join(tmpDir, "studyhall"), "./cmd/studyhall")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build studyhall: %v\n%s", err, out)
	}
}

// RunStudyhall runs the studyhall CLI with the given bearer token
func (e *E2ETestEnv) RunStudyhall(workDir, token string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "studyhall"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("STUDYHALL_TOKEN=%s", token),
		fmt.Sprintf("STUDYHALL_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response envelope
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error,omitempty"`
}

// APIError carries the machine-readable error code and message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	return e.execute(req)
}

// PostMultipart performs a multipart form upload with a single file part
func (e *E2ETestEnv) PostMultipart(path string, fields map[string]string, fileName string, fileContent []byte, authToken string) (*APIResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(fileContent); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.ServerURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return e.execute(req)
}

func (e *E2ETestEnv) execute(req *http.Request) (*APIResponse, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		if apiResp.Error != nil {
			return nil, fmt.Errorf("HTTP %d [%s]: %s", resp.StatusCode, apiResp.Error.Code, apiResp.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	documentRepo := repository.NewCourseDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	qaLogRepo := repository.NewQALogRepository(pool)
	verifiedRepo := repository.NewVerifiedAnswerRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// Initialize services against the stubbed provider
	model := &stubModel{}
	userSvc := service.NewUserService(userRepo)
	retrievalSvc := service.NewRetrievalService(model, chunkRepo, verifiedRepo)
	answerSvc := service.NewAnswerService(retrievalSvc, model, courseRepo, qaLogRepo, service.AnswerConfig{
		RetrievalChunks:   4,
		RetrievalVerified: 2,
	})
	correctionSvc := service.NewCorrectionService(qaLogRepo, model, txRunner)
	courseSvc := service.NewCourseService(courseRepo)
	chatLogSvc := service.NewChatLogService(qaLogRepo)
	ingestionSvc := service.NewIngestionService(documentRepo, chunkRepo, courseRepo, service.IngestionConfig{
		MaxChunkChars:           1200,
		TranscriptWindowSeconds: 45,
	})
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, model)

	cfg := server.RouterConfig{
		TokenVerifier:    auth.NewTokenVerifier(jwtSecret),
		UserProvisioner:  userSvc,
		DB:               pool,
		QAHandler:        handlers.NewQAHandler(answerSvc, correctionSvc),
		LogsHandler:      handlers.NewLogsHandler(chatLogSvc),
		DocumentsHandler: handlers.NewDocumentsHandler(ingestionSvc),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc),
		CoursesHandler:   handlers.NewCoursesHandler(courseSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to start
	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// stubAnswer is the canned generation for every answer prompt. It carries a
// parenthesized citation so the confidence heuristic scores it like a real
// grounded answer.
const stubAnswer = "A deadlock occurs when processes hold resources while waiting on each other, so none can proceed (lecture4.vtt, timestamp 5s)."

// stubModel stands in for the hosted model providers so E2E runs stay offline
// and deterministic. Embeddings hash each token into a fixed slot, so texts
// that share words land close together under cosine distance.
type stubModel struct{}

func (m *stubModel) EmbedText(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:()\"'")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%embeddingDims]++
	}
	// Cosine distance is undefined against a zero vector
	vec[0]++
	return vec, nil
}

func (m *stubModel) GenerateText(_ context.Context, req llm.GenerationRequest) (string, error) {
	if strings.Contains(req.Prompt, "comma-separated") {
		return "deadlock, mutexes, virtual memory", nil
	}
	return stubAnswer, nil
}

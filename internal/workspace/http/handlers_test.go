package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefoundry/foundry-backend/internal/finetune"
	"github.com/codefoundry/foundry-backend/internal/ollama"
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
	"github.com/codefoundry/foundry-backend/internal/workspace/hub"
	"github.com/codefoundry/foundry-backend/internal/workspace/store"
)

type scriptedChat struct {
	history []ollama.ChatMessage
	model   string
}

func (f *scriptedChat) GenerateReply(_ context.Context, model string, history []ollama.ChatMessage) string {
	f.model = model
	f.history = history
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return "ack: " + history[i].Content
		}
	}
	return "ack"
}

type instantGateway struct{}

func (instantGateway) PullModel(_ context.Context, _ string, onChunk func(ollama.ProgressChunk)) error {
	onChunk(ollama.ProgressChunk{Status: "success"})
	return nil
}

func (instantGateway) CreateModel(_ context.Context, _, _ string, _ func(ollama.ProgressChunk)) error {
	return nil
}

func (instantGateway) PushModel(_ context.Context, _ string, _ func(ollama.ProgressChunk)) error {
	return nil
}

type testEnv struct {
	engine *gin.Engine
	store  *store.Store
	hub    *hub.Hub
	chat   *scriptedChat
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.New(4000)
	streamHub := hub.New()
	chat := &scriptedChat{}
	handler := New(st, streamHub, chat, finetune.New(st, instantGateway{}, 0))

	engine := gin.New()
	handler.Register(engine)
	return &testEnv{engine: engine, store: st, hub: streamHub, chat: chat}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	envelope := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func (e *testEnv) seedProjectAndTask(t *testing.T) (domain.Project, domain.Task) {
	t.Helper()
	title := "Demo"
	p := e.store.CreateProject(domain.CreateProjectRequest{Title: &title})
	taskTitle := "T1"
	task, err := e.store.CreateTask(p.ID, domain.CreateTaskRequest{Title: &taskTitle})
	require.NoError(t, err)
	return p, task
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/projects", `{"title":"Demo","base_prompt":"be brief"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Project
	require.NoError(t, json.Unmarshal(body["project"], &created))
	assert.Equal(t, "Demo", created.Title)

	rec, _ = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d", created.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/projects/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/projects/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d", created.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/projects/%d", created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTaskActivationOverJSON(t *testing.T) {
	env := newTestEnv(t)
	p, task := env.seedProjectAndTask(t)
	ft, err := env.store.CreateFineTune(p.ID, task.ID, domain.CreateFineTuneRequest{
		BaseModel:   "llama3.1",
		TargetModel: "demo-tuned",
	})
	require.NoError(t, err)

	path := fmt.Sprintf("/projects/%d/tasks/%d", p.ID, task.ID)

	// Queued job cannot be activated.
	rec, _ := env.do(t, http.MethodPut, path, fmt.Sprintf(`{"active_fine_tune_id":%q}`, ft.ID))
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	status := domain.FineTuneStatusSucceeded
	result := "demo-tuned"
	_, err = env.store.UpdateFineTune(ft.ID, domain.FineTunePatch{Status: &status, ResultModel: &result})
	require.NoError(t, err)

	rec, body := env.do(t, http.MethodPut, path, fmt.Sprintf(`{"active_fine_tune_id":%q}`, ft.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	var got domain.Task
	require.NoError(t, json.Unmarshal(body["task"], &got))
	require.NotNil(t, got.ActiveModel)
	assert.Equal(t, "demo-tuned", *got.ActiveModel)

	// An absent key leaves the activation alone.
	rec, body = env.do(t, http.MethodPut, path, `{"title":"T1 renamed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body["task"], &got))
	assert.Equal(t, "T1 renamed", got.Title)
	require.NotNil(t, got.ActiveFineTuneID)

	// An explicit null clears it.
	rec, body = env.do(t, http.MethodPut, path, `{"active_fine_tune_id":null}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body["task"], &got))
	assert.Nil(t, got.ActiveFineTuneID)
	assert.Nil(t, got.ActiveModel)
}

func TestAssignTasksConflictStatus(t *testing.T) {
	env := newTestEnv(t)
	p, _ := env.seedProjectAndTask(t)
	other := env.store.CreateProject(domain.CreateProjectRequest{})
	foreignTitle := "foreign"
	foreign, err := env.store.CreateTask(other.ID, domain.CreateTaskRequest{Title: &foreignTitle})
	require.NoError(t, err)
	groupTitle := "Backlog"
	group, err := env.store.CreateGroup(p.ID, domain.CreateGroupRequest{Title: &groupTitle})
	require.NoError(t, err)

	rec, _ := env.do(t, http.MethodPost,
		fmt.Sprintf("/projects/%d/groups/%d/tasks", p.ID, group.ID),
		fmt.Sprintf(`{"taskIds":[%d]}`, foreign.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChatTurn(t *testing.T) {
	env := newTestEnv(t)
	p, task := env.seedProjectAndTask(t)
	prompt := "be brief"
	_, err := env.store.UpdateProject(p.ID, domain.UpdateProjectRequest{BasePrompt: &prompt})
	require.NoError(t, err)

	rec, body := env.do(t, http.MethodPost,
		fmt.Sprintf("/projects/%d/runs/tasks/%d/start", p.ID, task.ID), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var run domain.Run
	require.NoError(t, json.Unmarshal(body["run"], &run))

	rec, body = env.do(t, http.MethodPost, fmt.Sprintf("/runs/%d/messages", run.ID), `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var userMessage domain.Message
	require.NoError(t, json.Unmarshal(body["message"], &userMessage))
	assert.Equal(t, "user", userMessage.Role)
	assert.Equal(t, "hi", userMessage.Content)

	messages, err := env.store.ListMessages(run.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "ack: hi", messages[1].Content)

	// The base prompt rode along as the leading system turn.
	require.NotEmpty(t, env.chat.history)
	assert.Equal(t, "system", env.chat.history[0].Role)
	assert.Equal(t, "be brief", env.chat.history[0].Content)

	rec, _ = env.do(t, http.MethodPost, fmt.Sprintf("/runs/%d/messages", run.ID), `{"role":"user"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/runs/999/messages", `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFineTuneEndpoint(t *testing.T) {
	env := newTestEnv(t)
	p, task := env.seedProjectAndTask(t)
	path := fmt.Sprintf("/projects/%d/tasks/%d/fine-tunes", p.ID, task.ID)

	rec, _ := env.do(t, http.MethodPost, path, `{"target_model":"demo-tuned"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodPost, path,
		`{"base_model":"llama3.1","target_model":"demo-tuned","dataset_text":"q: hi\na: hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var ft domain.FineTune
	require.NoError(t, json.Unmarshal(body["fine_tune"], &ft))
	assert.Equal(t, domain.FineTuneStatusQueued, ft.Status)

	// The detached pipeline finishes against the instant gateway.
	require.Eventually(t, func() bool {
		got, err := env.store.GetFineTune(p.ID, task.ID, ft.ID)
		return err == nil && got.Status == domain.FineTuneStatusSucceeded
	}, 2*time.Second, 10*time.Millisecond)

	rec, body = env.do(t, http.MethodGet, path+"/"+ft.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body["fine_tune"], &ft))
	require.NotNil(t, ft.ResultModel)
	assert.Equal(t, "demo-tuned", *ft.ResultModel)
}

func TestTasksAsCodeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	p, _ := env.seedProjectAndTask(t)

	rec, _ := env.do(t, http.MethodPut, fmt.Sprintf("/projects/%d/tasks-as-code", p.ID),
		`{"groups":[{"tasks":[]}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPut, fmt.Sprintf("/projects/%d/tasks-as-code", p.ID),
		`{"groups":[{"title":"Sprint 1","tasks":[{"title":"A"}]}],"ungrouped_tasks":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/projects/%d/tasks-as-code", p.ID), nil)
	out := httptest.NewRecorder()
	env.engine.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	var tree domain.TasksAsCode
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &tree))
	require.Len(t, tree.Groups, 1)
	assert.Equal(t, "Sprint 1", tree.Groups[0].Title)
	require.Len(t, tree.Groups[0].Tasks, 1)
	assert.Equal(t, "A", tree.Groups[0].Tasks[0].Title)
	assert.Empty(t, tree.UngroupedTasks)
}

package finetune

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefoundry/foundry-backend/internal/ollama"
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
	"github.com/codefoundry/foundry-backend/internal/workspace/store"
)

type stageCall struct {
	op    string
	model string
}

// fakeGateway scripts the three pipeline stages. Each stage emits its chunks
// and returns its configured error.
type fakeGateway struct {
	pullErr   error
	createErr error
	pushErr   error

	pullChunks []ollama.ProgressChunk

	calls     []stageCall
	modelfile string

	// When set, PullModel signals entry and blocks until released.
	pullEntered chan struct{}
	pullRelease chan struct{}
}

func (g *fakeGateway) PullModel(_ context.Context, model string, onChunk func(ollama.ProgressChunk)) error {
	if g.pullEntered != nil {
		g.pullEntered <- struct{}{}
		<-g.pullRelease
	}
	g.calls = append(g.calls, stageCall{"pull", model})
	for _, chunk := range g.pullChunks {
		onChunk(chunk)
	}
	return g.pullErr
}

func (g *fakeGateway) CreateModel(_ context.Context, model, modelfile string, onChunk func(ollama.ProgressChunk)) error {
	g.calls = append(g.calls, stageCall{"create", model})
	g.modelfile = modelfile
	if g.createErr == nil {
		onChunk(ollama.ProgressChunk{Status: "success"})
	}
	return g.createErr
}

func (g *fakeGateway) PushModel(_ context.Context, model string, onChunk func(ollama.ProgressChunk)) error {
	g.calls = append(g.calls, stageCall{"push", model})
	return g.pushErr
}

func newJobFixture(t *testing.T) (*store.Store, domain.FineTune) {
	t.Helper()
	s := store.New(4000)
	p := s.CreateProject(domain.CreateProjectRequest{})
	task, err := s.CreateTask(p.ID, domain.CreateTaskRequest{})
	require.NoError(t, err)
	ref := "https://example.com/dataset"
	ft, err := s.CreateFineTune(p.ID, task.ID, domain.CreateFineTuneRequest{
		BaseModel:    "llama3.1",
		TargetModel:  "demo-tuned",
		ReferenceURL: &ref,
	})
	require.NoError(t, err)
	return s, ft
}

func TestRunHappyPath(t *testing.T) {
	s, ft := newJobFixture(t)
	gw := &fakeGateway{pullChunks: []ollama.ProgressChunk{
		{Status: "pulling manifest"},
		{Status: "success"},
	}}
	o := New(s, gw, 0)

	o.Run(JobInput{FineTune: ft, DatasetText: "q: hi\na: hello", TaskTitle: "Untitled task"})

	got, err := s.GetFineTune(ft.ProjectID, ft.TaskID, ft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FineTuneStatusSucceeded, got.Status)
	require.NotNil(t, got.ResultModel)
	assert.Equal(t, "demo-tuned", *got.ResultModel)
	assert.Nil(t, got.ErrorMessage)

	require.Equal(t, []stageCall{
		{"pull", "llama3.1"},
		{"create", "demo-tuned"},
		{"push", "demo-tuned"},
	}, gw.calls)
	assert.Contains(t, gw.modelfile, "FROM llama3.1")
	assert.Contains(t, gw.modelfile, "q: hi")

	// Stage progress landed in the log in pipeline order.
	stages := []string{}
	for _, entry := range got.Logs {
		stages = append(stages, entry.Stage)
	}
	assert.Equal(t, []string{
		domain.FineTuneStatusPulling,
		domain.FineTuneStatusPulling,
		domain.FineTuneStatusTraining,
	}, stages)
}

func TestRunPullFailureStopsPipeline(t *testing.T) {
	s, ft := newJobFixture(t)
	gw := &fakeGateway{pullErr: errors.New("manifest not found")}
	o := New(s, gw, 0)

	o.Run(JobInput{FineTune: ft})

	got, err := s.GetFineTune(ft.ProjectID, ft.TaskID, ft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FineTuneStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "manifest not found")
	assert.Nil(t, got.ResultModel)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "pull", gw.calls[0].op)
}

func TestRunPushFailureKeepsErrorDetail(t *testing.T) {
	s, ft := newJobFixture(t)
	gw := &fakeGateway{pushErr: &ollama.GatewayError{Op: "push", Status: 502}}
	o := New(s, gw, 0)

	o.Run(JobInput{FineTune: ft})

	got, err := s.GetFineTune(ft.ProjectID, ft.TaskID, ft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FineTuneStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "HTTP 502")
	assert.Nil(t, got.ResultModel)
}

func TestSameTaskJobsRunOneAtATime(t *testing.T) {
	s, ft := newJobFixture(t)
	second, err := s.CreateFineTune(ft.ProjectID, ft.TaskID, domain.CreateFineTuneRequest{
		BaseModel:   "llama3.1",
		TargetModel: "demo-tuned-2",
	})
	require.NoError(t, err)

	gw := &fakeGateway{
		pullEntered: make(chan struct{}, 2),
		pullRelease: make(chan struct{}),
	}
	o := New(s, gw, 0)

	o.Start(JobInput{FineTune: ft})
	<-gw.pullEntered

	o.Start(JobInput{FineTune: second})

	// While the first job holds the gate the second must still be queued.
	time.Sleep(50 * time.Millisecond)
	got, err := s.GetFineTune(second.ProjectID, second.TaskID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FineTuneStatusQueued, got.Status)

	close(gw.pullRelease)
	<-gw.pullEntered

	require.Eventually(t, func() bool {
		got, err := s.GetFineTune(second.ProjectID, second.TaskID, second.ID)
		return err == nil && got.Status == domain.FineTuneStatusSucceeded
	}, 2*time.Second, 10*time.Millisecond)
}

package finetune

import (
	"context"
	"sync"

	"github.com/codefoundry/foundry-backend/internal/ollama"
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
	"github.com/codefoundry/foundry-backend/internal/workspace/store"
)

// Gateway is the slice of the model gateway the orchestrator drives.
type Gateway interface {
	PullModel(ctx context.Context, model string, onChunk func(ollama.ProgressChunk)) error
	CreateModel(ctx context.Context, model, modelfile string, onChunk func(ollama.ProgressChunk)) error
	PushModel(ctx context.Context, model string, onChunk func(ollama.ProgressChunk)) error
}

// Orchestrator drives fine-tune jobs through pull, create and push, writing
// every status transition and progress line straight into the store. It
// holds no job state of its own: a concurrent reader polling the store sees
// progress as it lands.
type Orchestrator struct {
	store           *store.Store
	gateway         Gateway
	maxDatasetChars int

	mu        sync.Mutex
	taskGates map[int]*sync.Mutex
}

// New creates an orchestrator. maxDatasetChars is the global truncation
// point for training text.
func New(st *store.Store, gw Gateway, maxDatasetChars int) *Orchestrator {
	return &Orchestrator{
		store:           st,
		gateway:         gw,
		maxDatasetChars: maxDatasetChars,
		taskGates:       map[int]*sync.Mutex{},
	}
}

// JobInput is everything the pipeline needs beyond the stored record. The
// dataset text is deliberately not persisted on the job.
type JobInput struct {
	FineTune    domain.FineTune
	DatasetText string
	TaskTitle   string
}

// Start launches the pipeline in the background and returns immediately.
// The creating request observes the queued record and moves on; completion
// is only visible through the store.
func (o *Orchestrator) Start(job JobInput) {
	go o.Run(job)
}

// Run executes the full pipeline synchronously. Jobs for the same task are
// serialized in arrival order; jobs for different tasks interleave freely.
// Failures terminate the pipeline and land in the job record, never in a
// caller.
func (o *Orchestrator) Run(job JobInput) {
	gate := o.taskGate(job.FineTune.TaskID)
	gate.Lock()
	defer gate.Unlock()

	logger := newJobLogger(job.FineTune.ID)
	ctx := context.Background()
	ft := job.FineTune

	o.setStage(ft.ID, domain.FineTuneStatusPulling)
	logger.stage(domain.FineTuneStatusPulling)
	err := o.gateway.PullModel(ctx, ft.BaseModel, func(chunk ollama.ProgressChunk) {
		o.appendLog(ft.ID, domain.FineTuneStatusPulling, chunk.Summary())
	})
	if err != nil {
		o.fail(ft.ID, err, logger)
		return
	}

	modelfile := Modelfile(ModelfileInput{
		BaseModel:    ft.BaseModel,
		DatasetName:  ft.DatasetName,
		DatasetText:  job.DatasetText,
		ReferenceURL: ft.DatasetReference,
		TaskTitle:    job.TaskTitle,
	}, o.maxDatasetChars)

	o.setStage(ft.ID, domain.FineTuneStatusTraining)
	logger.stage(domain.FineTuneStatusTraining)
	err = o.gateway.CreateModel(ctx, ft.TargetModel, modelfile, func(chunk ollama.ProgressChunk) {
		o.appendLog(ft.ID, domain.FineTuneStatusTraining, chunk.Summary())
	})
	if err != nil {
		o.fail(ft.ID, err, logger)
		return
	}

	o.setStage(ft.ID, domain.FineTuneStatusPushing)
	logger.stage(domain.FineTuneStatusPushing)
	err = o.gateway.PushModel(ctx, ft.TargetModel, func(chunk ollama.ProgressChunk) {
		o.appendLog(ft.ID, domain.FineTuneStatusPushing, chunk.Summary())
	})
	if err != nil {
		o.fail(ft.ID, err, logger)
		return
	}

	status := domain.FineTuneStatusSucceeded
	result := ft.TargetModel
	if _, err := o.store.UpdateFineTune(ft.ID, domain.FineTunePatch{
		Status:      &status,
		ResultModel: &result,
	}); err != nil {
		logger.error("finalize", err)
		return
	}
	logger.done(result)
}

func (o *Orchestrator) taskGate(taskID int) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	gate, ok := o.taskGates[taskID]
	if !ok {
		gate = &sync.Mutex{}
		o.taskGates[taskID] = gate
	}
	return gate
}

func (o *Orchestrator) setStage(fineTuneID, stage string) {
	if _, err := o.store.UpdateFineTune(fineTuneID, domain.FineTunePatch{Status: &stage}); err != nil {
		newJobLogger(fineTuneID).error("set_stage", err)
	}
}

func (o *Orchestrator) appendLog(fineTuneID, stage, message string) {
	if err := o.store.AppendFineTuneLog(fineTuneID, stage, message); err != nil {
		newJobLogger(fineTuneID).error("append_log", err)
	}
}

func (o *Orchestrator) fail(fineTuneID string, cause error, logger *jobLogger) {
	status := domain.FineTuneStatusFailed
	detail := cause.Error()
	if _, err := o.store.UpdateFineTune(fineTuneID, domain.FineTunePatch{
		Status:       &status,
		ErrorMessage: &detail,
	}); err != nil {
		logger.error("mark_failed", err)
		return
	}
	logger.error("pipeline", cause)
}

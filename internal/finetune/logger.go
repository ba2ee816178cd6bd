package finetune

import "log"

// jobLogger tags process-level log lines with the job id. Job progress
// itself goes into the store log, not here.
type jobLogger struct {
	jobID string
}

func newJobLogger(jobID string) *jobLogger {
	return &jobLogger{jobID: jobID}
}

func (l *jobLogger) stage(stage string) {
	log.Printf("[info] job=%s operation=fine_tune stage=%s", l.jobID, stage)
}

func (l *jobLogger) done(resultModel string) {
	log.Printf("[info] job=%s operation=fine_tune message=succeeded result_model=%s", l.jobID, resultModel)
}

func (l *jobLogger) error(operation string, err error) {
	log.Printf("[error] job=%s operation=%s error=%v", l.jobID, operation, err)
}

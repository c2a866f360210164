package exporter

// Export stages
const (
	StageStart = "preparing workbook"
	StageRows  = "writing rows"
	StageDone  = "done"
)

// ProgressEvent reports export progress
type ProgressEvent struct {
	Percent int
	Stage   string
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	percent = min(max(percent, 0), 100)
	progress(ProgressEvent{
		Percent: percent,
		Stage:   stage,
	})
}

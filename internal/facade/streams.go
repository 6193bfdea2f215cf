package facade

import (
	"context"

	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/opsengine"
	"github.com/winpacman/core/internal/orchestrator"
	"github.com/winpacman/core/internal/streams"
)

// ProgressEvent is the progress payload for refresh streams.
type ProgressEvent struct {
	Provider model.Manager
	Phase    string
	Current  int
	Total    int
	Message  string
}

// RefreshResult is the terminal value of a refresh stream: Meta is
// populated for a single-provider refresh, Results for refresh_all.
type RefreshResult struct {
	Meta    model.SyncMetadata
	Results map[model.Manager]error
}

// OperationProgress is the progress payload for install/uninstall streams.
type OperationProgress struct {
	Phase string
	Line  string
}

type (
	streamResult    = streams.Stream[struct{}, []model.Record]
	streamRecord    = streams.Stream[struct{}, model.Record]
	streamProgress  = streams.Stream[ProgressEvent, RefreshResult]
	streamOperation = streams.Stream[OperationProgress, opsengine.Result]
)

func newResultStream(ctx context.Context) (*streamResult, context.Context, func(streams.Event[struct{}, []model.Record])) {
	return streams.New[struct{}, []model.Record](ctx)
}

func newRecordStream(ctx context.Context) (*streamRecord, context.Context, func(streams.Event[struct{}, model.Record])) {
	return streams.New[struct{}, model.Record](ctx)
}

func newProgressStream(ctx context.Context) (*streamProgress, context.Context, func(streams.Event[ProgressEvent, RefreshResult])) {
	return streams.New[ProgressEvent, RefreshResult](ctx)
}

func newOperationStream(ctx context.Context) (*streamOperation, context.Context, func(streams.Event[OperationProgress, opsengine.Result])) {
	return streams.New[OperationProgress, opsengine.Result](ctx)
}

func finish(emit func(streams.Event[struct{}, []model.Record]), records []model.Record, err error) {
	if err != nil {
		emit(streams.Event[struct{}, []model.Record]{Err: err, Done: true})
		return
	}
	emit(streams.Event[struct{}, []model.Record]{Result: &records, Done: true})
}

func finishRecord(emit func(streams.Event[struct{}, model.Record]), rec model.Record, err error) {
	if err != nil {
		emit(streams.Event[struct{}, model.Record]{Err: err, Done: true})
		return
	}
	emit(streams.Event[struct{}, model.Record]{Result: &rec, Done: true})
}

func progressEvent(p orchestrator.Progress) streams.Event[ProgressEvent, RefreshResult] {
	return streams.Event[ProgressEvent, RefreshResult]{Progress: &ProgressEvent{
		Provider: p.Provider,
		Phase:    string(p.Phase),
		Current:  p.Current,
		Total:    p.Total,
		Message:  p.Message,
	}}
}

func finishMeta(emit func(streams.Event[ProgressEvent, RefreshResult]), meta model.SyncMetadata, err error) {
	if err != nil {
		emit(streams.Event[ProgressEvent, RefreshResult]{Err: err, Done: true})
		return
	}
	result := RefreshResult{Meta: meta}
	emit(streams.Event[ProgressEvent, RefreshResult]{Result: &result, Done: true})
}

func finishSync(emit func(streams.Event[ProgressEvent, RefreshResult]), results map[model.Manager]error) {
	result := RefreshResult{Results: results}
	emit(streams.Event[ProgressEvent, RefreshResult]{Result: &result, Done: true})
}

func operationProgressEvent(p opsengine.Progress) streams.Event[OperationProgress, opsengine.Result] {
	return streams.Event[OperationProgress, opsengine.Result]{Progress: &OperationProgress{Phase: string(p.Phase), Line: p.Line}}
}

func finishOperation(emit func(streams.Event[OperationProgress, opsengine.Result]), result opsengine.Result, err error) {
	if err != nil {
		emit(streams.Event[OperationProgress, opsengine.Result]{Result: &result, Err: err, Done: true})
		return
	}
	emit(streams.Event[OperationProgress, opsengine.Result]{Result: &result, Done: true})
}

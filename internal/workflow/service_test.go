package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Fastgraph/internal/artifact"
	"github.com/shaiso/Fastgraph/internal/domain"
	"github.com/shaiso/Fastgraph/internal/memstore"
	"github.com/shaiso/Fastgraph/internal/repo"
	"github.com/shaiso/Fastgraph/internal/stream"
	"github.com/shaiso/Fastgraph/internal/taskqueue"
)

// testEnv — собранный in-memory оркестратор для тестов.
type testEnv struct {
	service     *Service
	runs        *memstore.RunStore
	checkpoints *memstore.CheckpointStore
	artifacts   *artifact.Store
	hub         *stream.Hub
	queue       *taskqueue.Queue
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	artifacts, err := artifact.NewStore(artifact.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create artifact store: %v", err)
	}

	env := &testEnv{
		runs:        memstore.NewRunStore(),
		checkpoints: memstore.NewCheckpointStore(),
		artifacts:   artifacts,
		hub:         stream.NewHub(stream.Config{}),
		queue:       taskqueue.New(taskqueue.Config{}),
	}

	cfg.Runs = env.runs
	cfg.Checkpoints = env.checkpoints
	cfg.Artifacts = env.artifacts
	cfg.Hub = env.hub
	cfg.Queue = env.queue
	if cfg.StageDelay == 0 {
		cfg.StageDelay = time.Millisecond
	}

	env.service = NewService(cfg)
	return env
}

// collect вычитывает все доставленные события после завершения очереди.
func collect(sink *stream.ChanSink) []stream.Event {
	var events []stream.Event
	for {
		select {
		case e := <-sink.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestService_SubmitCompletesRun(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	runID, err := env.service.Submit(ctx, "demo", map[string]any{"input": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.queue.Wait()

	run, err := env.service.Status(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RunStatusCompleted, run.Status)
	}
	if run.Name != "demo" {
		t.Errorf("expected name demo, got %s", run.Name)
	}
	if !run.IsFinished() {
		t.Error("completed run should be finished")
	}

	// Result содержит summary, confidence_score и ссылку на артефакт
	if run.Result["summary"] == nil {
		t.Error("result should contain summary")
	}
	score, ok := run.Result["confidence_score"].(float64)
	if !ok {
		t.Fatalf("confidence_score should be a number, got %T", run.Result["confidence_score"])
	}
	if score < 0 || score > 1 {
		t.Errorf("confidence_score out of range: %v", score)
	}
	refs, ok := run.Result["artifacts"].([]any)
	if !ok || len(refs) != 1 {
		t.Fatalf("result should reference exactly one artifact, got %v", run.Result["artifacts"])
	}

	// Артефакт действительно записан
	data, err := env.artifacts.Get(refs[0].(string))
	if err != nil {
		t.Fatalf("artifact should exist: %v", err)
	}
	if len(data) == 0 {
		t.Error("artifact should not be empty")
	}
}

func TestService_EventSequence(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	// Барьер задерживает выполнение run, пока тест не подпишется:
	// подписчик видит все события run с самого начала.
	release := make(chan struct{})
	env.queue.Enqueue(func(context.Context) error { <-release; return nil })

	sink := stream.NewChanSink(32)
	runID, err := env.service.Submit(ctx, "", map[string]any{"input": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.hub.Subscribe(runID.String(), sink)
	defer env.hub.Unsubscribe(runID.String(), sink)

	close(release)
	env.queue.Wait()

	events := collect(sink)
	want := []stream.EventType{
		stream.EventStarted,
		stream.EventNodeUpdate,
		stream.EventNodeUpdate,
		stream.EventNodeUpdate,
		stream.EventCompleted,
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(events), events)
	}
	for i, e := range events {
		if e.Event != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.Event)
		}
		if e.RunID != runID.String() {
			t.Errorf("event %d: expected run_id %s, got %s", i, runID, e.RunID)
		}
	}

	// node_update следуют порядку стадий
	nodes := []string{events[1].Node, events[2].Node, events[3].Node}
	wantNodes := []string{"plan", "execute", "validate"}
	for i, n := range nodes {
		if n != wantNodes[i] {
			t.Errorf("stage %d: expected %s, got %s", i, wantNodes[i], n)
		}
	}

	// Терминальное событие несёт итоговый result
	if events[4].Result == nil {
		t.Error("completed event should carry the result")
	}
}

func TestService_CheckpointsPerStage(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	runID, err := env.service.Submit(ctx, "", map[string]any{"input": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.queue.Wait()

	steps := env.checkpoints.Steps(runID)
	want := []string{"plan", "execute", "validate"}
	if len(steps) != len(want) {
		t.Fatalf("expected %d checkpoints, got %d: %v", len(want), len(steps), steps)
	}
	for i, s := range steps {
		if s != want[i] {
			t.Errorf("checkpoint %d: expected %s, got %s", i, want[i], s)
		}
	}

	// Последний checkpoint — validate
	latest, err := env.checkpoints.LoadLatest(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Step != "validate" {
		t.Errorf("expected latest checkpoint validate, got %s", latest.Step)
	}

	cp, err := env.checkpoints.Load(ctx, runID, "execute")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cp.State["processed"] != true {
		t.Errorf("execute checkpoint should contain stage output, got %v", cp.State)
	}
}

func TestService_InvalidPayload(t *testing.T) {
	env := newTestEnv(t, Config{})

	// Канал не сериализуем в JSON
	_, err := env.service.Submit(context.Background(), "", map[string]any{"ch": make(chan int)})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}

	// Run не создан
	runs, err := env.service.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestService_StageFailure(t *testing.T) {
	failing := []Stage{
		{
			Name: "plan",
			Run: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				return map[string]any{"ok": true}, nil
			},
		},
		{
			Name: "execute",
			Run: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				return nil, errors.New("boom")
			},
		},
	}

	env := newTestEnv(t, Config{Stages: failing})
	ctx := context.Background()

	release := make(chan struct{})
	env.queue.Enqueue(func(context.Context) error { <-release; return nil })

	sink := stream.NewChanSink(32)
	runID, err := env.service.Submit(ctx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.hub.Subscribe(runID.String(), sink)
	defer env.hub.Unsubscribe(runID.String(), sink)

	close(release)
	env.queue.Wait()

	run, err := env.service.Status(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunStatusFailed {
		t.Errorf("expected status %s, got %s", domain.RunStatusFailed, run.Status)
	}
	if run.Result["error"] == nil {
		t.Error("failed run should carry the error in result")
	}

	events := collect(sink)
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	last := events[len(events)-1]
	if last.Event != stream.EventFailed {
		t.Errorf("expected terminal event %s, got %s", stream.EventFailed, last.Event)
	}
	if last.Error == "" {
		t.Error("failed event should carry the error text")
	}

	// Ровно одно терминальное событие
	terminal := 0
	for _, e := range events {
		switch e.Event {
		case stream.EventCompleted, stream.EventFailed, stream.EventCancelled:
			terminal++
		}
	}
	if terminal != 1 {
		t.Errorf("expected exactly 1 terminal event, got %d", terminal)
	}
}

func TestService_Cancel(t *testing.T) {
	started := make(chan struct{})
	blocking := []Stage{
		{
			Name: "plan",
			Run: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			},
		},
	}

	env := newTestEnv(t, Config{Stages: blocking})
	ctx := context.Background()

	release := make(chan struct{})
	env.queue.Enqueue(func(context.Context) error { <-release; return nil })

	sink := stream.NewChanSink(32)
	runID, err := env.service.Submit(ctx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.hub.Subscribe(runID.String(), sink)
	defer env.hub.Unsubscribe(runID.String(), sink)

	close(release)
	<-started
	if err := env.service.Cancel(ctx, runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.queue.Wait()

	run, err := env.service.Status(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunStatusCancelled {
		t.Errorf("expected status %s, got %s", domain.RunStatusCancelled, run.Status)
	}

	events := collect(sink)
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	if last := events[len(events)-1]; last.Event != stream.EventCancelled {
		t.Errorf("expected terminal event %s, got %s", stream.EventCancelled, last.Event)
	}
}

func TestService_UnsubscribedObserverSeesPrefix(t *testing.T) {
	gate := make(chan struct{})
	stages := []Stage{
		{
			Name: "plan",
			Run: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				return map[string]any{"ok": true}, nil
			},
		},
		{
			Name: "execute",
			Run: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				<-gate
				return map[string]any{"ok": true}, nil
			},
		},
	}

	env := newTestEnv(t, Config{Stages: stages})
	ctx := context.Background()

	release := make(chan struct{})
	env.queue.Enqueue(func(context.Context) error { <-release; return nil })

	sink := stream.NewChanSink(32)
	runID, err := env.service.Submit(ctx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.hub.Subscribe(runID.String(), sink)
	close(release)

	// Ждём started и node_update первой стадии, затем отключаемся
	first := <-sink.Events()
	second := <-sink.Events()
	env.hub.Unsubscribe(runID.String(), sink)
	close(gate)

	env.queue.Wait()

	// Отключившийся наблюдатель видит строгий префикс: ничего после
	// отписки, без пропусков до неё
	if first.Event != stream.EventStarted || second.Event != stream.EventNodeUpdate {
		t.Errorf("unexpected prefix: %s, %s", first.Event, second.Event)
	}
	if second.Node != "plan" {
		t.Errorf("expected node plan, got %s", second.Node)
	}
	if rest := collect(sink); len(rest) != 0 {
		t.Errorf("expected no events after unsubscribe, got %v", rest)
	}

	run, err := env.service.Status(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("run should finish without the observer, got %s", run.Status)
	}
}

func TestService_CancelFinishedRun(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	runID, err := env.service.Submit(ctx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.queue.Wait()

	if err := env.service.Cancel(ctx, runID); !errors.Is(err, ErrRunFinished) {
		t.Errorf("expected ErrRunFinished, got %v", err)
	}
}

func TestService_CancelUnknownRun(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.service.Cancel(context.Background(), uuid.New())
	if !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("expected repo.ErrNotFound, got %v", err)
	}
}

func TestService_StatusUnknownRun(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.service.Status(context.Background(), uuid.New())
	if !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("expected repo.ErrNotFound, got %v", err)
	}
}

// recordingNotifier запоминает завершённые runs.
type recordingNotifier struct {
	mu   sync.Mutex
	runs []*domain.Run
}

func (n *recordingNotifier) RunFinished(ctx context.Context, run *domain.Run) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, run)
}

func TestService_NotifierReceivesTerminalRun(t *testing.T) {
	notifier := &recordingNotifier{}
	env := newTestEnv(t, Config{Notifier: notifier})

	runID, err := env.service.Submit(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.queue.Wait()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.runs) != 1 {
		t.Fatalf("expected 1 notified run, got %d", len(notifier.runs))
	}
	if notifier.runs[0].ID != runID {
		t.Errorf("expected run %s, got %s", runID, notifier.runs[0].ID)
	}
	if notifier.runs[0].Status != domain.RunStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RunStatusCompleted, notifier.runs[0].Status)
	}
}

func TestService_SequentialRunsShareQueue(t *testing.T) {
	var mu sync.Mutex
	active := 0
	maxActive := 0

	counting := []Stage{
		{
			Name: "plan",
			Run: func(ctx context.Context, _, _ map[string]any) (map[string]any, error) {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return map[string]any{"ok": true}, nil
			},
		},
	}

	env := newTestEnv(t, Config{Stages: counting})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := env.service.Submit(ctx, "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	env.queue.Wait()

	// Одна очередь — runs выполняются по одному
	if maxActive != 1 {
		t.Errorf("expected at most 1 run executing at a time, got %d", maxActive)
	}

	runs, err := env.service.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(runs))
	}
	for _, r := range runs {
		if r.Status != domain.RunStatusCompleted {
			t.Errorf("run %s: expected status %s, got %s", r.ID, domain.RunStatusCompleted, r.Status)
		}
	}
}

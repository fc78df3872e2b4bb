package provisioning

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/imamik/etcdnode/internal/config"
	"github.com/imamik/etcdnode/internal/etcdconf"
	"github.com/imamik/etcdnode/internal/facts"
	"github.com/imamik/etcdnode/internal/identity"
	"github.com/imamik/etcdnode/internal/installers"
)

// trace records the begin and end of every side effect, in order.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (t *trace) add(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *trace) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

// indexOf returns the position of event, or -1.
func (t *trace) indexOf(event string) int {
	for i, e := range t.all() {
		if e == event {
			return i
		}
	}
	return -1
}

type fakeService struct {
	trace    *trace
	active   map[string]bool
	stopErr  error
	startErr error
}

func newFakeService(tr *trace, active ...string) *fakeService {
	s := &fakeService{trace: tr, active: map[string]bool{}}
	for _, u := range active {
		s.active[u] = true
	}
	return s
}

func (s *fakeService) Stop(_ context.Context, unit string) error {
	s.trace.add("stop:begin %s", unit)
	if s.stopErr != nil {
		return s.stopErr
	}
	s.active[unit] = false
	s.trace.add("stop:end %s", unit)
	return nil
}

func (s *fakeService) EnsureRunning(_ context.Context, unit string) (bool, error) {
	if s.startErr != nil {
		return false, s.startErr
	}
	if s.active[unit] {
		return false, nil
	}
	s.active[unit] = true
	s.trace.add("start %s", unit)
	return true, nil
}

func (s *fakeService) Restart(_ context.Context, unit string) error {
	s.active[unit] = true
	s.trace.add("restart %s", unit)
	return nil
}

func (s *fakeService) Enable(_ context.Context, unit string) error {
	s.trace.add("enable %s", unit)
	return nil
}

func (s *fakeService) DaemonReload(context.Context) error {
	s.trace.add("daemon-reload")
	return nil
}

type fakePurger struct {
	trace *trace
	err   error
	dirs  []string
}

func (p *fakePurger) Purge(dir string) error {
	p.trace.add("purge:begin %s", dir)
	if p.err != nil {
		return p.err
	}
	p.dirs = append(p.dirs, dir)
	p.trace.add("purge:end %s", dir)
	return nil
}

type fakeConfigurator struct {
	trace   *trace
	err     error
	applied []etcdconf.Params
}

func (c *fakeConfigurator) Configure(p etcdconf.Params) (bool, error) {
	c.trace.add("configure:begin")
	if c.err != nil {
		return false, c.err
	}
	changed := len(c.applied) == 0 || c.applied[len(c.applied)-1] != p
	c.applied = append(c.applied, p)
	c.trace.add("configure:end")
	return changed, nil
}

type fakeFiles struct {
	trace *trace
	files map[string][]byte
}

func newFakeFiles(tr *trace) *fakeFiles {
	return &fakeFiles{trace: tr, files: map[string][]byte{}}
}

func (f *fakeFiles) Apply(file installers.File) (bool, error) {
	f.trace.add("file %s", file.Path)
	if bytes.Equal(f.files[file.Path], file.Content) {
		return false, nil
	}
	f.files[file.Path] = append([]byte(nil), file.Content...)
	return true, nil
}

type fakeSleeper struct {
	trace   *trace
	slept   []time.Duration
	onSleep func()
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.trace.add("wait:begin %v", d)
	if s.onSleep != nil {
		s.onSleep()
	}
	s.slept = append(s.slept, d)
	s.trace.add("wait:end %v", d)
}

type fakeUploader struct {
	trace     *trace
	checkErr  error
	uploadErr error
	keys      []string
	bodies    [][]byte
}

func (u *fakeUploader) CheckBucket(context.Context) error {
	return u.checkErr
}

func (u *fakeUploader) Upload(_ context.Context, key string, body io.Reader, size int64) error {
	u.trace.add("backup %s", key)
	if u.uploadErr != nil {
		return u.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: read %d, declared %d", len(data), size)
	}
	u.keys = append(u.keys, key)
	u.bodies = append(u.bodies, data)
	return nil
}

type fakeRecorder struct {
	stages []string
}

func (r *fakeRecorder) ObserveStage(phase, stage string, _ time.Duration) {
	r.stages = append(r.stages, phase+"/"+stage)
}

// recordingObserver keeps every event for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
	lines  []string
	fields map[string]string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{fields: map[string]string{}}
}

func (o *recordingObserver) Printf(format string, v ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, fmt.Sprintf(format, v...))
}

func (o *recordingObserver) Event(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) WithFields(fields map[string]string) Observer {
	for k, v := range fields {
		o.fields[k] = v
	}
	return o
}

func (o *recordingObserver) ofType(t EventType) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Event
	for _, e := range o.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func intPtr(i int) *int { return &i }

func testConfig() *config.Config {
	cfg := &config.Config{
		Members: []string{"a.example.com", "b.example.com", "c.example.com"},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

func testPlan(destructive bool) BootstrapPlan {
	return BootstrapPlan{
		Identity:    identity.Identity{Member: "b.example.com", Method: identity.MethodFQDN},
		DataDir:     "/var/lib/etcd/b.example.com.etcd",
		Destructive: destructive,
		WaitSeconds: 60,
	}
}

// harness bundles a Context with its fakes.
type harness struct {
	ctx      *Context
	trace    *trace
	service  *fakeService
	purger   *fakePurger
	conf     *fakeConfigurator
	files    *fakeFiles
	sleeper  *fakeSleeper
	uploader *fakeUploader
	observer *recordingObserver
	metrics  *fakeRecorder
}

func newHarness(cfg *config.Config, plan BootstrapPlan) *harness {
	tr := &trace{}
	h := &harness{
		trace:    tr,
		service:  newFakeService(tr, cfg.Service),
		purger:   &fakePurger{trace: tr},
		conf:     &fakeConfigurator{trace: tr},
		files:    newFakeFiles(tr),
		sleeper:  &fakeSleeper{trace: tr},
		uploader: &fakeUploader{trace: tr},
		observer: newRecordingObserver(),
		metrics:  &fakeRecorder{},
	}
	h.ctx = &Context{
		Context:      context.Background(),
		Config:       cfg,
		Facts:        facts.Facts{FQDN: "b.example.com", Hostname: "b", OSFamily: "debian"},
		Plan:         plan,
		Observer:     h.observer,
		Timeouts:     &config.Timeouts{ServiceStop: time.Second, Backup: time.Minute, RetryMaxAttempts: 1, RetryInitialDelay: time.Millisecond},
		RunID:        "test-run",
		Service:      h.service,
		Purger:       h.purger,
		Configurator: h.conf,
		Files:        h.files,
		Backup:       h.uploader,
		Sleeper:      h.sleeper,
		Metrics:      h.metrics,
		Now:          func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) },
		Results:      &Results{},
	}
	return h
}

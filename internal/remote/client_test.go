package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yamatooooooooooooo/Echoes-Learn2-sub000/internal/provider"
)

/* ------------------------------- test fakes ------------------------------ */

type fakeProvider struct {
	files map[string][]byte
	times map[string]time.Time

	initCalls   int
	signInCalls int
	signOutErr  error
	listErr     error
	getErr      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{files: map[string][]byte{}, times: map[string]time.Time{}}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Initialize(ctx context.Context) error {
	f.initCalls++
	return nil
}

func (f *fakeProvider) SignIn(ctx context.Context) error {
	f.signInCalls++
	return nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error { return f.signOutErr }

func (f *fakeProvider) add(name string, modified time.Time) {
	f.files[name] = []byte("content-" + name)
	f.times[name] = modified
}

func (f *fakeProvider) Create(ctx context.Context, name string, content []byte) (provider.FileDescriptor, error) {
	f.files[name] = content
	f.times[name] = time.Now().UTC()
	return f.describe(name), nil
}

func (f *fakeProvider) Update(ctx context.Context, id string, content []byte) (provider.FileDescriptor, error) {
	if _, ok := f.files[id]; !ok {
		return provider.FileDescriptor{}, errors.New("update of missing file")
	}
	f.files[id] = content
	return f.describe(id), nil
}

func (f *fakeProvider) Get(ctx context.Context, id string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	content, ok := f.files[id]
	if !ok {
		return nil, errors.New("missing file")
	}
	return content, nil
}

func (f *fakeProvider) List(ctx context.Context, q provider.Query) ([]provider.FileDescriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []provider.FileDescriptor
	for name := range f.files {
		if q.Name != "" && name != q.Name {
			continue
		}
		out = append(out, f.describe(name))
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ModifiedTime.After(out[i].ModifiedTime) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeProvider) describe(name string) provider.FileDescriptor {
	return provider.FileDescriptor{
		ID:           name,
		Name:         name,
		ModifiedTime: f.times[name],
		Size:         int64(len(f.files[name])),
	}
}

/* --------------------------------- tests -------------------------------- */

// Network operations implicitly initialize and sign in, exactly once.
func TestClient_ImplicitInitializeAndSignIn(t *testing.T) {
	p := newFakeProvider()
	c := NewClient(p)

	if _, err := c.ListBackups(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := c.ListBackups(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.initCalls != 1 || p.signInCalls != 1 {
		t.Fatalf("want 1 init / 1 sign-in, got %d / %d", p.initCalls, p.signInCalls)
	}
}

func TestClient_SignOutKeepsInitialized(t *testing.T) {
	p := newFakeProvider()
	c := NewClient(p)
	ctx := context.Background()

	if err := c.SignIn(ctx); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	// Next operation signs in again without re-initializing.
	if _, err := c.ListBackups(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if p.initCalls != 1 || p.signInCalls != 2 {
		t.Fatalf("want 1 init / 2 sign-ins, got %d / %d", p.initCalls, p.signInCalls)
	}
}

// Uploading twice under one name updates in place, never duplicates.
func TestClient_UploadIsIdempotent(t *testing.T) {
	p := newFakeProvider()
	c := NewClient(p)
	ctx := context.Background()

	name := BackupFilePrefix + "2025-01-01.json"
	if _, err := c.Upload(ctx, []byte("v1"), name); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if _, err := c.Upload(ctx, []byte("v2"), name); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	if len(p.files) != 1 {
		t.Fatalf("want exactly one remote file, got %d", len(p.files))
	}
	if string(p.files[name]) != "v2" {
		t.Fatalf("second upload must replace content, got %q", p.files[name])
	}
}

func TestClient_LocateLatestBackup(t *testing.T) {
	p := newFakeProvider()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	p.add(BackupFilePrefix+"old.json", base)
	p.add(BackupFilePrefix+"newest.json", base.Add(48*time.Hour))
	p.add(BackupFilePrefix+"mid.json", base.Add(24*time.Hour))

	fd, err := NewClient(p).LocateLatestBackup(context.Background())
	if err != nil {
		t.Fatalf("locate latest: %v", err)
	}
	if fd.Name != BackupFilePrefix+"newest.json" {
		t.Fatalf("want newest file, got %q", fd.Name)
	}
}

func TestClient_LocateLatestBackup_NoneFound(t *testing.T) {
	_, err := NewClient(newFakeProvider()).LocateLatestBackup(context.Background())
	if !errors.Is(err, ErrNoBackup) {
		t.Fatalf("want ErrNoBackup, got %v", err)
	}
}

func TestClient_Locate_ExactMatchOrNil(t *testing.T) {
	p := newFakeProvider()
	p.add("a.json", time.Now())
	c := NewClient(p)
	ctx := context.Background()

	fd, err := c.Locate(ctx, "a.json")
	if err != nil || fd == nil || fd.Name != "a.json" {
		t.Fatalf("exact match failed: fd=%v err=%v", fd, err)
	}
	fd, err = c.Locate(ctx, "b.json")
	if err != nil || fd != nil {
		t.Fatalf("want nil descriptor for missing file, got fd=%v err=%v", fd, err)
	}
}

// Provider failures are wrapped into OpError with the underlying cause.
func TestClient_WrapsProviderFailures(t *testing.T) {
	p := newFakeProvider()
	cause := errors.New("quota exhausted")
	p.listErr = cause

	_, err := NewClient(p).ListBackups(context.Background())
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("want *OpError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not preserved: %v", err)
	}

	p2 := newFakeProvider()
	p2.add("f.json", time.Now())
	p2.getErr = errors.New("read failed")
	_, err = NewClient(p2).Download(context.Background(), "f.json")
	if !errors.As(err, &opErr) || opErr.Op != "download" {
		t.Fatalf("want download OpError, got %v", err)
	}
}

func TestBackupFileName(t *testing.T) {
	now := time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)
	if got := BackupFileName("", now); got != BackupFilePrefix+"2025-08-30.json" {
		t.Fatalf("default suffix: %q", got)
	}
	if got := BackupFileName("manual", now); got != BackupFilePrefix+"manual.json" {
		t.Fatalf("explicit suffix: %q", got)
	}
}

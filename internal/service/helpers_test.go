package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAPI — in-memory реализация AuthAPI, FilesAPI и UsersAPI.
type fakeAPI struct {
	mu sync.Mutex

	token    string
	loginErr error
	regErr   error
	regCalls int

	files     []model.FileRecord
	page      listquery.Page
	lastQuery listquery.Query
	lastToken string
	uploaded  []string
	rows      []model.Row
	deleted   []int64
	err       error

	users      []model.UserRecord
	usersErr   error
	usersCalls atomic.Int32
	usersGate  chan struct{}
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeAPI) Register(_ context.Context, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regCalls++
	return f.regErr
}

func (f *fakeAPI) ListFiles(_ context.Context, token string) ([]model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	return f.files, f.err
}

func (f *fakeAPI) ListFilesPage(_ context.Context, token string, q listquery.Query) (listquery.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	f.lastQuery = q
	return f.page, f.err
}

func (f *fakeAPI) UploadFile(_ context.Context, _, filename string, content io.Reader) (*model.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	_, _ = io.ReadAll(content)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, filename)
	return &model.UploadResult{Message: "ok", ID: int64(len(f.uploaded))}, nil
}

func (f *fakeAPI) FileContent(_ context.Context, _ string, _ int64) ([]model.Row, error) {
	return f.rows, f.err
}

func (f *fakeAPI) DeleteFile(_ context.Context, _ string, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ListUsers(_ context.Context, _ string) ([]model.UserRecord, error) {
	f.usersCalls.Add(1)
	if f.usersGate != nil {
		<-f.usersGate
	}
	return f.users, f.usersErr
}

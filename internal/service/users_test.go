package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
)

func sampleUsers() []model.UserRecord {
	return []model.UserRecord{
		{ID: 1, Email: "ann@example.com", FullName: "Ann Lee", Role: "ADMIN"},
		{ID: 2, Email: "bob@example.com", FullName: "Bob Stone", Role: "USER"},
	}
}

func TestUserService_ListCaches(t *testing.T) {
	api := &fakeAPI{users: sampleUsers()}
	svc := NewUserService(api, time.Minute, testLogger())

	for i := 0; i < 3; i++ {
		users, err := svc.List(context.Background(), "tok")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("len = %d", len(users))
		}
	}
	if n := api.usersCalls.Load(); n != 1 {
		t.Errorf("ListUsers вызван %d раз, ожидалось 1", n)
	}

	svc.Invalidate("tok")
	if _, err := svc.List(context.Background(), "tok"); err != nil {
		t.Fatal(err)
	}
	if n := api.usersCalls.Load(); n != 2 {
		t.Errorf("после Invalidate ListUsers вызван %d раз, ожидалось 2", n)
	}
}

func TestUserService_ConcurrentLoadsShareRequest(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{users: sampleUsers(), usersGate: gate}
	svc := NewUserService(api, 0, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.List(context.Background(), "tok"); err != nil {
				t.Errorf("List: %v", err)
			}
		}()
	}

	// Ждём, пока первый запрос дойдёт до API.
	deadline := time.Now().Add(2 * time.Second)
	for api.usersCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if n := api.usersCalls.Load(); n != 1 {
		t.Errorf("ListUsers вызван %d раз, ожидалось 1", n)
	}
}

func TestUserService_Search(t *testing.T) {
	svc := NewUserService(&fakeAPI{users: sampleUsers()}, time.Minute, testLogger())

	tests := []struct {
		term string
		want int
	}{
		{term: "", want: 2},
		{term: "ANN", want: 1},
		{term: "example.com", want: 2},
		{term: "zzz", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			users, err := svc.Search(context.Background(), "tok", tt.term)
			if err != nil {
				t.Fatal(err)
			}
			if len(users) != tt.want {
				t.Errorf("len = %d, ожидалось %d", len(users), tt.want)
			}
		})
	}
}

func TestUserService_ErrorNotCached(t *testing.T) {
	api := &fakeAPI{usersErr: errors.New("boom")}
	svc := NewUserService(api, time.Minute, testLogger())

	if _, err := svc.List(context.Background(), "tok"); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	api.usersErr = nil
	api.users = sampleUsers()
	users, err := svc.List(context.Background(), "tok")
	if err != nil || len(users) != 2 {
		t.Errorf("users = %v, err = %v", users, err)
	}
}

package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"todo-bot/internal/models"
)

func todo(id, owner, space string) models.Todo {
	return models.Todo{
		ID:        id,
		CreatedBy: models.User{ID: owner, DisplayName: owner},
		Content:   "content " + id,
		SpaceID:   space,
	}
}

func ids(todos []models.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func TestCreateAndFind(t *testing.T) {
	s := New()
	if err := s.Create(todo("t1", "alice", "space-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Find("t1", "alice")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Completed || got.Content != "content t1" || got.SpaceID != "space-1" {
		t.Fatalf("unexpected todo: %+v", got)
	}

	if _, err := s.Find("t1", ""); err != nil {
		t.Fatalf("Find without owner: %v", err)
	}
	if _, err := s.Find("t1", "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find for other user err = %v, want ErrNotFound", err)
	}
	if _, err := s.Find("missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find missing err = %v, want ErrNotFound", err)
	}
}

func TestCreateDuplicateID(t *testing.T) {
	s := New()
	if err := s.Create(todo("t1", "alice", "space-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(todo("t1", "bob", "space-2")); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	if got := s.List("bob"); len(got) != 0 {
		t.Fatalf("bob has %d todos, want 0", len(got))
	}
}

func TestListOrderAndOwnership(t *testing.T) {
	s := New()
	for i := 0; i < 6; i++ {
		owner := "alice"
		if i%2 == 1 {
			owner = "bob"
		}
		space := "space-1"
		if i >= 4 {
			space = "space-2"
		}
		if err := s.Create(todo(fmt.Sprintf("t%d", i), owner, space)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	cases := []struct {
		name string
		got  []models.Todo
		want []string
	}{
		{"alice", s.List("alice"), []string{"t0", "t2", "t4"}},
		{"bob", s.List("bob"), []string{"t1", "t3", "t5"}},
		{"space-1", s.ListSpace("space-1"), []string{"t0", "t1", "t2", "t3"}},
		{"space-2", s.ListSpace("space-2"), []string{"t4", "t5"}},
		{"unknown user", s.List("carol"), []string{}},
		{"unknown space", s.ListSpace("space-9"), []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.got == nil {
				t.Fatal("got nil slice, want empty")
			}
			if fmt.Sprint(ids(c.got)) != fmt.Sprint(c.want) {
				t.Fatalf("ids = %v, want %v", ids(c.got), c.want)
			}
		})
	}

	for _, td := range s.List("alice") {
		if td.CreatedBy.ID != "alice" {
			t.Fatalf("List(alice) returned todo owned by %q", td.CreatedBy.ID)
		}
	}
}

func TestUpdateKeepsIndicesConsistent(t *testing.T) {
	s := New()
	if err := s.Create(todo("t1", "alice", "space-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.Update("t1", "alice", func(td *models.Todo) {
		td.Completed = !td.Completed
		td.ID = "hijack"
		td.CreatedBy.ID = "mallory"
		td.SpaceID = "elsewhere"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Completed || updated.ID != "t1" || updated.CreatedBy.ID != "alice" || updated.SpaceID != "space-1" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	fromUser := s.List("alice")[0]
	fromSpace := s.ListSpace("space-1")[0]
	if !fromUser.Completed || !fromSpace.Completed {
		t.Fatalf("indices diverged: user=%+v space=%+v", fromUser, fromSpace)
	}
}

func TestUpdateUnknownLeavesStoreUnchanged(t *testing.T) {
	s := New()
	if err := s.Create(todo("t1", "alice", "space-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	called := false
	_, err := s.Update("t1", "bob", func(*models.Todo) { called = true })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if called {
		t.Fatal("mutator ran for a todo the user does not own")
	}
	if s.Len() != 1 || len(s.List("bob")) != 0 {
		t.Fatalf("store changed: len=%d", s.Len())
	}
	if got, _ := s.Find("t1", "alice"); got.Completed {
		t.Fatal("todo was mutated")
	}
}

func TestUpdateRequiresOwner(t *testing.T) {
	s := New()
	if err := s.Create(todo("t1", "alice", "space-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	called := false
	if _, err := s.Update("t1", "", func(*models.Todo) { called = true }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if called {
		t.Fatal("mutator ran without an owner")
	}
	if got, _ := s.Find("t1", ""); got.Completed {
		t.Fatal("todo was mutated")
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	if err := s.Create(todo("t1", "alice", "space-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := s.Find("t1", "alice")
	got.Completed = true
	s.List("alice")[0].Completed = true

	if again, _ := s.Find("t1", "alice"); again.Completed {
		t.Fatal("mutating a returned copy changed the store")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("t%d", i)
			_ = s.Create(todo(id, "alice", "space-1"))
			_, _ = s.Update(id, "alice", func(td *models.Todo) { td.Completed = !td.Completed })
			_ = s.List("alice")
			_ = s.ListSpace("space-1")
		}(i)
	}
	wg.Wait()

	if len(s.List("alice")) != 50 || len(s.ListSpace("space-1")) != 50 {
		t.Fatalf("lost writes: user=%d space=%d", len(s.List("alice")), len(s.ListSpace("space-1")))
	}
}

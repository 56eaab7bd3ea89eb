package autoblog

import (
	"errors"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test_blogs.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}

	return s, cleanup
}

func insertPosts(t *testing.T, s *Store, posts ...BlogPost) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		id, err := s.InsertPost(p)
		if err != nil {
			t.Fatalf("InsertPost failed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestNewStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestInsertAndGetPost(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	post := BlogPost{
		Title:       "T",
		Topic:       "Hello World!",
		Filename:    "hello-world.html",
		CreatedDate: "2025-01-15 10:30:00",
	}
	id, err := s.InsertPost(post)
	if err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	got, err := s.GetPost(id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Title, post.Title)
	}
	if got.Topic != post.Topic {
		t.Errorf("Topic = %q, want %q", got.Topic, post.Topic)
	}
	if got.Filename != post.Filename {
		t.Errorf("Filename = %q, want %q", got.Filename, post.Filename)
	}
	if got.CreatedDate != post.CreatedDate {
		t.Errorf("CreatedDate = %q, want %q", got.CreatedDate, post.CreatedDate)
	}
	if got.Downloaded {
		t.Error("Downloaded should be false")
	}
}

func TestInsertSameFilenameAddsRows(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := BlogPost{Title: "A", Topic: "a", Filename: "a.html", CreatedDate: "2025-01-01 00:00:00"}
	ids := insertPosts(t, s, p, p)
	if ids[0] == ids[1] {
		t.Fatalf("expected distinct ids, got %v", ids)
	}

	all, err := s.ListPosts(AllPosts)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListPosts count = %d, want 2", len(all))
	}
}

func TestGetPostNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetPost(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	insertPosts(t, s,
		BlogPost{Title: "Old", Topic: "old", Filename: "old.html", CreatedDate: "2025-01-01 08:00:00"},
		BlogPost{Title: "New", Topic: "new", Filename: "new.html", CreatedDate: "2025-01-03 08:00:00"},
		BlogPost{Title: "Mid", Topic: "mid", Filename: "mid.html", CreatedDate: "2025-01-02 08:00:00"},
		BlogPost{Title: "New2", Topic: "new2", Filename: "new2.html", CreatedDate: "2025-01-03 08:00:00"},
	)

	got, err := s.ListPosts(AllPosts)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	want := []string{"New2", "New", "Mid", "Old"}
	if len(got) != len(want) {
		t.Fatalf("ListPosts count = %d, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("post %d = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestDownloadFilterPartition(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ids := insertPosts(t, s,
		BlogPost{Title: "1", Topic: "1", Filename: "1.html", CreatedDate: "2025-01-01 00:00:01"},
		BlogPost{Title: "2", Topic: "2", Filename: "2.html", CreatedDate: "2025-01-01 00:00:02"},
		BlogPost{Title: "3", Topic: "3", Filename: "3.html", CreatedDate: "2025-01-01 00:00:03"},
		BlogPost{Title: "4", Topic: "4", Filename: "4.html", CreatedDate: "2025-01-01 00:00:04"},
	)

	steps := [][]int64{
		nil,
		{ids[1]},
		{ids[1], ids[3]},
		{ids[0], 12345},
		{ids[0], ids[1], ids[2], ids[3]},
	}
	for i, mark := range steps {
		if err := s.MarkDownloaded(mark...); err != nil {
			t.Fatalf("step %d: MarkDownloaded failed: %v", i, err)
		}
		all, err := s.ListPosts(AllPosts)
		if err != nil {
			t.Fatal(err)
		}
		avail, err := s.ListPosts(OnlyAvailable)
		if err != nil {
			t.Fatal(err)
		}
		down, err := s.ListPosts(OnlyDownloaded)
		if err != nil {
			t.Fatal(err)
		}

		seen := make(map[int64]int)
		for _, p := range avail {
			if p.Downloaded {
				t.Errorf("step %d: available list has downloaded post %d", i, p.ID)
			}
			seen[p.ID]++
		}
		for _, p := range down {
			if !p.Downloaded {
				t.Errorf("step %d: downloaded list has available post %d", i, p.ID)
			}
			seen[p.ID]++
		}
		if len(seen) != len(all) {
			t.Errorf("step %d: partition covers %d posts, want %d", i, len(seen), len(all))
		}
		for id, n := range seen {
			if n != 1 {
				t.Errorf("step %d: post %d appears %d times", i, id, n)
			}
		}
	}
}

func TestMarkDownloadedIdempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ids := insertPosts(t, s,
		BlogPost{Title: "a", Topic: "a", Filename: "a.html", CreatedDate: "2025-01-01 00:00:01"},
		BlogPost{Title: "b", Topic: "b", Filename: "b.html", CreatedDate: "2025-01-01 00:00:02"},
	)

	if err := s.MarkDownloaded(ids[0]); err != nil {
		t.Fatalf("MarkDownloaded failed: %v", err)
	}
	if err := s.MarkDownloaded(ids[0], 404); err != nil {
		t.Fatalf("MarkDownloaded repeat failed: %v", err)
	}

	a, err := s.GetPost(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.GetPost(ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if !a.Downloaded {
		t.Error("first post should be downloaded")
	}
	if b.Downloaded {
		t.Error("second post should be untouched")
	}
	if err := s.MarkDownloaded(); err != nil {
		t.Errorf("empty MarkDownloaded failed: %v", err)
	}
}

func TestGetPostsSkipsUnknown(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ids := insertPosts(t, s,
		BlogPost{Title: "a", Topic: "a", Filename: "a.html", CreatedDate: "2025-01-01 00:00:01"},
		BlogPost{Title: "b", Topic: "b", Filename: "b.html", CreatedDate: "2025-01-01 00:00:02"},
	)
	got, err := s.GetPosts([]int64{ids[1], 77, ids[0]})
	if err != nil {
		t.Fatalf("GetPosts failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[1] || got[1].ID != ids[0] {
		t.Errorf("GetPosts = %+v", got)
	}
}

func TestLatestTopicForFilename(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	topic, err := s.LatestTopicForFilename("none.html")
	if err != nil || topic != "" {
		t.Fatalf("unused filename: topic=%q err=%v", topic, err)
	}

	insertPosts(t, s,
		BlogPost{Title: "a", Topic: "first", Filename: "x.html", CreatedDate: "2025-01-01 00:00:01"},
		BlogPost{Title: "b", Topic: "second", Filename: "x.html", CreatedDate: "2025-01-01 00:00:02"},
	)
	topic, err = s.LatestTopicForFilename("x.html")
	if err != nil {
		t.Fatal(err)
	}
	if topic != "second" {
		t.Errorf("topic = %q, want second", topic)
	}
}

func TestNewStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogs.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	insertPosts(t, s, BlogPost{Title: "a", Topic: "a", Filename: "a.html", CreatedDate: "2025-01-01 00:00:01"})
	s.Close()

	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	all, err := s.ListPosts(AllPosts)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("posts after reopen = %d, want 1", len(all))
	}
}

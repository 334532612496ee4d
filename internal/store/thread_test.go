package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"loom/internal/apperr"
	"loom/internal/models"
)

func makeThread(t *testing.T, db *sql.DB, slug string, visibility models.Visibility) *models.ThoughtThread {
	t.Helper()
	s := NewThreadStore(db)
	created, err := s.Create(&models.ThoughtThread{
		Slug:       slug,
		Title:      "Thread " + slug,
		Status:     models.ThreadStatusActive,
		Visibility: visibility,
	})
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}
	return created
}

func TestThreadStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	slug := "test-thread-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanThreads(t, db, slug) })

	created := makeThread(t, db, slug, models.VisibilityPublic)
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	found, err := s.FindPublicBySlug(slug)
	if err != nil {
		t.Fatalf("FindPublicBySlug: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected thread %s, got %+v", created.ID, found)
	}
}

func TestThreadStorePrivateHiddenFromPublicLookups(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	slug := "test-thread-priv-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanThreads(t, db, slug) })

	created := makeThread(t, db, slug, models.VisibilityPrivate)

	if found, _ := s.FindPublicBySlug(slug); found != nil {
		t.Error("private thread must not resolve via public slug lookup")
	}

	threads, err := s.ListPublic()
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	for _, th := range threads {
		if th.ID == created.ID {
			t.Error("private thread must not appear in public listing")
		}
	}

	// Still reachable by ID for admin use.
	if found, _ := s.FindByID(created.ID); found == nil {
		t.Error("expected private thread via FindByID")
	}
}

func TestThreadStoreAppendNodeOrdering(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	slug := "test-thread-append-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanThreads(t, db, slug) })

	thread := makeThread(t, db, slug, models.VisibilityPublic)

	first, err := s.AppendNode(thread.ID, models.ThreadNode{
		PostID: uuid.New(), Status: models.NodeStatusFoundational, Annotation: "start",
	})
	if err != nil {
		t.Fatalf("AppendNode: %v", err)
	}
	if first.Order != 0 {
		t.Errorf("first order: got %d, want 0", first.Order)
	}

	second, err := s.AppendNode(thread.ID, models.ThreadNode{
		PostID: uuid.New(), Status: models.NodeStatusActive, Annotation: "next",
	})
	if err != nil {
		t.Fatalf("AppendNode: %v", err)
	}
	if second.Order != 1 {
		t.Errorf("second order: got %d, want 1", second.Order)
	}

	nodes, err := s.Nodes(thread.ID)
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Order != 0 || nodes[1].Order != 1 {
		t.Fatalf("nodes: got %+v", nodes)
	}
}

func TestThreadStoreRemoveNodeKeepsGaps(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	slug := "test-thread-gap-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanThreads(t, db, slug) })

	thread := makeThread(t, db, slug, models.VisibilityPublic)
	for i := 0; i < 3; i++ {
		s.AppendNode(thread.ID, models.ThreadNode{
			PostID: uuid.New(), Status: models.NodeStatusActive, Annotation: "n",
		})
	}

	if err := s.RemoveNode(thread.ID, 1); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}

	nodes, _ := s.Nodes(thread.ID)
	if len(nodes) != 2 {
		t.Fatalf("nodes: got %d, want 2", len(nodes))
	}
	// Survivors keep their orders; the gap at 1 stays.
	if nodes[0].Order != 0 || nodes[1].Order != 2 {
		t.Errorf("orders: got %d, %d; want 0, 2", nodes[0].Order, nodes[1].Order)
	}

	// The next append continues past the highest order, never refilling.
	appended, err := s.AppendNode(thread.ID, models.ThreadNode{
		PostID: uuid.New(), Status: models.NodeStatusActive, Annotation: "after gap",
	})
	if err != nil {
		t.Fatalf("AppendNode: %v", err)
	}
	if appended.Order != 3 {
		t.Errorf("order after gap: got %d, want 3", appended.Order)
	}

	// Removing a missing order is a no-op.
	if err := s.RemoveNode(thread.ID, 99); err != nil {
		t.Errorf("RemoveNode (missing): %v", err)
	}
}

func TestThreadStoreUpdateNode(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	slug := "test-thread-upd-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanThreads(t, db, slug) })

	thread := makeThread(t, db, slug, models.VisibilityPublic)
	s.AppendNode(thread.ID, models.ThreadNode{
		PostID: uuid.New(), Status: models.NodeStatusActive, Annotation: "original",
	})

	superseded := models.NodeStatusSuperseded
	branch := 0
	err := s.UpdateNode(thread.ID, 0, NodeUpdate{
		Status:        &superseded,
		BranchFrom:    &branch,
		SetBranchFrom: true,
	})
	if err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}

	nodes, _ := s.Nodes(thread.ID)
	if nodes[0].Status != models.NodeStatusSuperseded {
		t.Errorf("status: got %q, want superseded", nodes[0].Status)
	}
	// Annotation was not in the update and must survive.
	if nodes[0].Annotation != "original" {
		t.Errorf("annotation: got %q, want %q", nodes[0].Annotation, "original")
	}
	if nodes[0].BranchFrom == nil || *nodes[0].BranchFrom != 0 {
		t.Errorf("branch_from: got %v, want 0", nodes[0].BranchFrom)
	}

	// Clearing the branch point.
	err = s.UpdateNode(thread.ID, 0, NodeUpdate{SetBranchFrom: true})
	if err != nil {
		t.Fatalf("UpdateNode (clear branch): %v", err)
	}
	nodes, _ = s.Nodes(thread.ID)
	if nodes[0].BranchFrom != nil {
		t.Errorf("branch_from: got %v, want nil", nodes[0].BranchFrom)
	}

	err = s.UpdateNode(thread.ID, 42, NodeUpdate{Status: &superseded})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found for missing order, got %v", err)
	}
}

func TestThreadStoreListPublicForPost(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	pubSlug := "test-thread-fp-pub-" + uuid.NewString()[:8]
	privSlug := "test-thread-fp-priv-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanThreads(t, db, pubSlug, privSlug) })

	pub := makeThread(t, db, pubSlug, models.VisibilityPublic)
	priv := makeThread(t, db, privSlug, models.VisibilityPrivate)

	postID := uuid.New()
	s.AppendNode(pub.ID, models.ThreadNode{PostID: postID, Status: models.NodeStatusActive, Annotation: ""})
	s.AppendNode(priv.ID, models.ThreadNode{PostID: postID, Status: models.NodeStatusActive, Annotation: ""})

	threads, err := s.ListPublicForPost(postID)
	if err != nil {
		t.Fatalf("ListPublicForPost: %v", err)
	}
	if len(threads) != 1 || threads[0].ID != pub.ID {
		t.Fatalf("threads: got %+v, want just the public one", threads)
	}
}

func TestThreadStoreDeleteCascadesNodes(t *testing.T) {
	db := testDB(t)
	s := NewThreadStore(db)

	slug := "test-thread-del-" + uuid.NewString()[:8]
	thread := makeThread(t, db, slug, models.VisibilityPublic)
	s.AppendNode(thread.ID, models.ThreadNode{PostID: uuid.New(), Status: models.NodeStatusActive, Annotation: ""})

	if err := s.Delete(thread.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	nodes, err := s.Nodes(thread.ID)
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected nodes gone with the thread, got %d", len(nodes))
	}
}

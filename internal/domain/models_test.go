package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUser_TableName(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Fatalf("TableName() = %q, want %q", got, "users")
	}
}

func TestProblem_TableName(t *testing.T) {
	if got := (Problem{}).TableName(); got != "problems" {
		t.Fatalf("TableName() = %q, want %q", got, "problems")
	}
}

func TestVote_TableName(t *testing.T) {
	if got := (Vote{}).TableName(); got != "votes" {
		t.Fatalf("TableName() = %q, want %q", got, "votes")
	}
}

func TestComment_TableName(t *testing.T) {
	if got := (Comment{}).TableName(); got != "comments" {
		t.Fatalf("TableName() = %q, want %q", got, "comments")
	}
}

func TestIdempotency_TableName(t *testing.T) {
	if got := (Idempotency{}).TableName(); got != "idempotency" {
		t.Fatalf("TableName() = %q, want %q", got, "idempotency")
	}
}

func TestProblem_Resolved(t *testing.T) {
	p := &Problem{Status: StatusOpen}
	if p.Resolved() {
		t.Fatalf("open problem reported as resolved")
	}
	p.Status = StatusResolved
	if !p.Resolved() {
		t.Fatalf("resolved problem reported as open")
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := User{
		ID:           "u1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         RoleCitizen,
		CreatedAt:    time.Now().UTC(),
	}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(b), "secret") {
		t.Fatalf("password hash leaked into JSON: %s", b)
	}
}

func TestProblemView_CommentsOmittedWhenEmpty(t *testing.T) {
	v := ProblemView{ID: "p1", Title: "Pothole", Status: StatusOpen}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	if strings.Contains(string(b), "comments") {
		t.Fatalf("summary view should omit comments key: %s", b)
	}

	v.Comments = []CommentView{{ID: "c1", Content: "same here"}}
	b, err = json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal view with comments: %v", err)
	}
	if !strings.Contains(string(b), `"comments"`) {
		t.Fatalf("detail view should include comments key: %s", b)
	}
}

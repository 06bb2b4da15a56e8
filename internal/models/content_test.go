package models

import (
	"testing"
	"time"
)

func TestNewContentRecord(t *testing.T) {
	record := NewContentRecord("Title", "body text", ContentTypeArticle, "https://example.com", nil)

	if record.ID == "" {
		t.Fatal("expected a generated id")
	}
	if record.Metadata == nil {
		t.Error("expected metadata map to be initialized")
	}
	if record.Tags == nil || record.Actions == nil {
		t.Error("expected tags and actions to be initialized")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if record.HasPriority() {
		t.Error("a new record must not be scored")
	}
	if record.ReminderDueAt != nil {
		t.Error("a new record must not have a reminder")
	}

	other := NewContentRecord("Title", "body text", ContentTypeArticle, "https://example.com", nil)
	if other.ID == record.ID {
		t.Error("two records must get distinct ids")
	}
}

func TestTouch(t *testing.T) {
	record := NewContentRecord("Title", "body", ContentTypeText, "", nil)
	if record.LastAccessedAt != nil {
		t.Fatal("expected no access timestamp before Touch")
	}

	record.Touch()
	if record.LastAccessedAt == nil {
		t.Fatal("expected access timestamp after Touch")
	}
	first := *record.LastAccessedAt

	time.Sleep(time.Millisecond)
	record.Touch()
	if !record.LastAccessedAt.After(first) {
		t.Error("expected Touch to move the access timestamp forward")
	}
}

func TestSetReminderIdempotent(t *testing.T) {
	record := NewContentRecord("Title", "body", ContentTypeText, "", nil)

	record.SetReminder(72 * time.Hour)
	if record.ReminderDueAt == nil {
		t.Fatal("expected reminder to be set")
	}
	due := *record.ReminderDueAt

	want := time.Now().Add(72 * time.Hour)
	if due.Sub(want) > time.Minute || want.Sub(due) > time.Minute {
		t.Errorf("reminder due %v, want about %v", due, want)
	}

	record.SetReminder(24 * time.Hour)
	if !record.ReminderDueAt.Equal(due) {
		t.Error("setting a reminder twice must not move the due date")
	}
}

func TestClampPriority(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.5, 1.0},
		{-3, 1.0},
		{1.0, 1.0},
		{5.5, 5.5},
		{10.0, 10.0},
		{42, 10.0},
	}
	for _, c := range cases {
		if got := ClampPriority(c.in); got != c.want {
			t.Errorf("ClampPriority(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

package task

import (
	"errors"
	"testing"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/user"
)

func TestNew(t *testing.T) {
	creator := user.User{ID: 7, Identity: "alice"}

	tests := []struct {
		name    string
		text    string
		creator user.User
		wantErr bool
		field   string
	}{
		{name: "valid", text: "buy milk", creator: creator},
		{name: "trims text", text: "  buy milk  ", creator: creator},
		{name: "empty text", text: "", creator: creator, wantErr: true, field: "text"},
		{name: "blank text", text: "   ", creator: creator, wantErr: true, field: "text"},
		{name: "unsaved creator", text: "buy milk", creator: user.User{Identity: "alice"}, wantErr: true, field: "user_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.text, tt.creator)
			if tt.wantErr {
				var verr *failure.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := verr.Fields[tt.field]; !ok {
					t.Errorf("expected problem on %q, got %v", tt.field, verr.Fields)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got.Text != "buy milk" {
				t.Errorf("expected text %q, got %q", "buy milk", got.Text)
			}
			if got.Done {
				t.Error("expected new task to be open")
			}
			if got.ID != 0 {
				t.Errorf("expected unsaved task, got id %d", got.ID)
			}
		})
	}
}

func TestTask_StateChangesReturnCopies(t *testing.T) {
	original := Task{ID: 1, Text: "write report", Creator: user.User{ID: 1, Identity: "bob"}}

	done := original.MarkDone()
	if !done.Done {
		t.Error("MarkDone() should set Done")
	}
	if original.Done {
		t.Error("MarkDone() must not modify the receiver")
	}

	if !done.MarkDone().Done {
		t.Error("MarkDone() should be idempotent")
	}

	reopened := done.Reopen()
	if reopened.Done {
		t.Error("Reopen() should clear Done")
	}
	if reopened.Reopen().Done {
		t.Error("Reopen() should be idempotent")
	}

	if !original.WithDone(true).Done || original.WithDone(false).Done {
		t.Error("WithDone() should apply the explicit target state")
	}
}

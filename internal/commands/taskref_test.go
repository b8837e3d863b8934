package commands

import (
	"testing"
)

func TestParseTaskID_Numeric(t *testing.T) {
	id, err := ParseTaskID([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 5 {
		t.Errorf("expected 5, got %d", id)
	}
}

func TestParseTaskID_HashPrefix(t *testing.T) {
	id, err := ParseTaskID([]string{"#12"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 12 {
		t.Errorf("expected 12, got %d", id)
	}
}

func TestParseTaskID_Required(t *testing.T) {
	_, err := ParseTaskID(nil)
	if err != ErrTaskIDRequired {
		t.Errorf("expected ErrTaskIDRequired, got %v", err)
	}
}

func TestParseTaskID_Invalid(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"abc", "invalid task id: abc"},
		{"a1", "invalid task id: a1"},
		{"-3", "invalid task id: -3"},
		{"0", "invalid task id: 0"},
		{"#", "invalid task id: #"},
		{"1.5", "invalid task id: 1.5"},
		{"99999999999999999999", "invalid task id: 99999999999999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			_, err := ParseTaskID([]string{tt.arg})
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestParseTaskID_ExtraArgument(t *testing.T) {
	_, err := ParseTaskID([]string{"1", "2"})
	if err == nil || err.Error() != "unexpected argument: 2" {
		t.Errorf("expected unexpected argument error, got %v", err)
	}
}

func TestParseTaskIDs_DropsDuplicates(t *testing.T) {
	ids, err := ParseTaskIDs([]string{"3", "#1", "3", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{3, 1, 2}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d]: expected %d, got %d", i, want[i], ids[i])
		}
	}
}

func TestParseTaskIDs_StopsAtInvalid(t *testing.T) {
	_, err := ParseTaskIDs([]string{"1", "x"})
	if err == nil || err.Error() != "invalid task id: x" {
		t.Errorf("expected invalid task id error, got %v", err)
	}
}

func TestParseTaskIDs_Required(t *testing.T) {
	if _, err := ParseTaskIDs(nil); err != ErrTaskIDRequired {
		t.Errorf("expected ErrTaskIDRequired, got %v", err)
	}
}

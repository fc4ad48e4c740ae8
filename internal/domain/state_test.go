package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestNewSupervisorState(t *testing.T) {
	goal := Goal{Description: "ship it", ProjectID: "proj-1"}
	s := NewSupervisorState(ModeAuto, goal)

	if s.Status != StatusRunning {
		t.Errorf("Expected status %q, got %q", StatusRunning, s.Status)
	}
	if s.ExecutionMode != ModeAuto {
		t.Errorf("Expected mode %q, got %q", ModeAuto, s.ExecutionMode)
	}
	if s.Iteration != 0 {
		t.Errorf("Expected iteration 0, got %d", s.Iteration)
	}
	if s.Goal.ProjectID != "proj-1" {
		t.Errorf("Expected project id to carry through, got %q", s.Goal.ProjectID)
	}
	if s.CompletedTasks == nil || s.BlockedTasks == nil {
		t.Error("History slices must be non-nil so JSON emits arrays")
	}
	if s.ActiveSessions == nil || s.TaskProgress == nil {
		t.Error("Maps must be non-nil so JSON emits objects")
	}
	if s.LastUpdated.IsZero() {
		t.Error("Expected LastUpdated to be set")
	}
}

func TestStateProgressHelpers(t *testing.T) {
	s := NewSupervisorState(ModeAuto, Goal{})

	if got := s.Progress("t-1"); got != (TaskProgress{}) {
		t.Errorf("Expected zero progress for unknown task, got %+v", got)
	}

	s.SetProgress("t-1", TaskProgress{RetryCount: 2, LastError: "boom"})
	got := s.Progress("t-1")
	if got.RetryCount != 2 || got.LastError != "boom" {
		t.Errorf("Unexpected progress %+v", got)
	}

	s.ClearProgress("t-1")
	if got := s.Progress("t-1"); got != (TaskProgress{}) {
		t.Errorf("Expected cleared progress, got %+v", got)
	}

	// Helpers must survive a nil map from an old blob.
	var old SupervisorState
	if got := old.Progress("x"); got != (TaskProgress{}) {
		t.Errorf("Expected zero progress on nil map, got %+v", got)
	}
	old.SetProgress("x", TaskProgress{RetryCount: 1})
	if old.Progress("x").RetryCount != 1 {
		t.Error("SetProgress must allocate the map lazily")
	}
}

func TestStateSessionHelpers(t *testing.T) {
	s := NewSupervisorState(ModeAuto, Goal{})

	if _, ok := s.Session("feat-a"); ok {
		t.Error("Expected no session for unknown feature")
	}

	info := SessionInfo{SessionID: "sess-1", Provider: ProviderGemini, FeatureID: "feat-a"}
	s.PutSession(info)
	got, ok := s.Session("feat-a")
	if !ok || got.SessionID != "sess-1" {
		t.Errorf("Expected stored session, got %+v ok=%v", got, ok)
	}

	s.DropSession("feat-a")
	if _, ok := s.Session("feat-a"); ok {
		t.Error("Expected session dropped")
	}
}

func TestStateTaskRetired(t *testing.T) {
	s := NewSupervisorState(ModeAuto, Goal{})
	s.CompletedTasks = append(s.CompletedTasks, CompletedTask{TaskID: "done-1"})
	s.BlockedTasks = append(s.BlockedTasks, BlockedTask{Task: Task{TaskID: "blocked-1"}})

	tests := []struct {
		taskID   string
		expected bool
	}{
		{"done-1", true},
		{"blocked-1", true},
		{"fresh-1", false},
	}
	for _, tt := range tests {
		if got := s.TaskRetired(tt.taskID); got != tt.expected {
			t.Errorf("TaskRetired(%q) = %v, want %v", tt.taskID, got, tt.expected)
		}
	}
}

func TestStateHaltResume(t *testing.T) {
	s := NewSupervisorState(ModeAuto, Goal{})
	s.Halt(HaltReasonResourceExhausted, "gemini quota")

	if s.Status != StatusHalted {
		t.Errorf("Expected %q, got %q", StatusHalted, s.Status)
	}
	if s.HaltReason != HaltReasonResourceExhausted || s.HaltDetails != "gemini quota" {
		t.Errorf("Unexpected halt bookkeeping: %q / %q", s.HaltReason, s.HaltDetails)
	}

	s.Resume()
	if s.Status != StatusRunning || s.HaltReason != "" || s.HaltDetails != "" {
		t.Errorf("Resume must clear halt fields, got %+v", s)
	}
}

// A halted state must serialize identically across load/save cycles so an
// operator inspecting Redis sees a stable blob.
func TestStateSerializationStable(t *testing.T) {
	s := NewSupervisorState(ModeManual, Goal{Description: "demo", ProjectID: "p"})
	s.Iteration = 7
	s.SetProgress("t-2", TaskProgress{RetryCount: 1, LastError: "lint failed", RepeatedErrorCount: 1})
	s.SetProgress("t-9", TaskProgress{InterrogationDone: true})
	s.PutSession(SessionInfo{SessionID: "s1", Provider: ProviderClaude, FeatureID: "auth", EstimatedTokens: 1200})
	s.PutSession(SessionInfo{SessionID: "s2", Provider: ProviderGemini, FeatureID: "billing"})
	s.LastUpdated = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Halt(HaltReasonOperatorRequested, "")

	first, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var loaded SupervisorState
	if err := json.Unmarshal(first, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := json.Marshal(&loaded)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("Round-trip changed the blob:\n%s\n%s", first, second)
	}
}

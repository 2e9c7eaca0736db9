package llm

import (
	"context"
	"errors"
	"testing"
)

// scriptedLLM replays canned replies and records every transcript it was
// called with.
type scriptedLLM struct {
	replies []string
	errs    []error
	calls   [][]Message
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Chat(ctx context.Context, messages []Message) (string, error) {
	n := len(s.calls)
	s.calls = append(s.calls, append([]Message{}, messages...))
	if n < len(s.errs) && s.errs[n] != nil {
		return "", s.errs[n]
	}
	if n < len(s.replies) {
		return s.replies[n], nil
	}
	return "", errors.New("no scripted reply")
}

func TestSessionTranscriptGrowth(t *testing.T) {
	mock := &scriptedLLM{replies: []string{"first answer", "second answer"}}
	s := NewSession(mock, "system prompt", nil)

	if s.Len() != 1 {
		t.Fatalf("new session length = %d, want 1 (system prompt)", s.Len())
	}

	reply, err := s.Send(context.Background(), "first question")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "first answer" {
		t.Errorf("reply = %q", reply)
	}
	if s.Len() != 3 {
		t.Errorf("length after first exchange = %d, want 3", s.Len())
	}

	if _, err := s.Send(context.Background(), "follow-up"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 5 {
		t.Errorf("length after second exchange = %d, want 5", s.Len())
	}

	// Second call must carry the whole conversation so far.
	second := mock.calls[1]
	if len(second) != 4 {
		t.Fatalf("second transcript length = %d, want 4", len(second))
	}
	if second[0].Role != RoleSystem {
		t.Errorf("transcript[0].Role = %q, want system", second[0].Role)
	}
	if second[1].Content != "first question" || second[2].Content != "first answer" {
		t.Errorf("prior exchange not carried: %+v", second[1:3])
	}
	if second[3].Role != RoleUser || second[3].Content != "follow-up" {
		t.Errorf("new turn malformed: %+v", second[3])
	}
}

func TestSessionUnchangedOnError(t *testing.T) {
	mock := &scriptedLLM{
		errs:    []error{errors.New("transport down"), nil},
		replies: []string{"", "recovered"},
	}
	s := NewSession(mock, "system prompt", nil)

	if _, err := s.Send(context.Background(), "doomed question"); err == nil {
		t.Fatal("expected transport error")
	}
	if s.Len() != 1 {
		t.Errorf("failed call must not grow the transcript, length = %d", s.Len())
	}

	// The retry must not see the failed turn.
	if _, err := s.Send(context.Background(), "retry"); err != nil {
		t.Fatal(err)
	}
	retry := mock.calls[1]
	if len(retry) != 2 {
		t.Fatalf("retry transcript length = %d, want 2", len(retry))
	}
	if retry[1].Content != "retry" {
		t.Errorf("retry transcript carries the failed turn: %+v", retry)
	}
}

func TestSessionIDsAreDistinct(t *testing.T) {
	mock := &scriptedLLM{}
	a := NewSession(mock, "p", nil)
	b := NewSession(mock, "p", nil)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("session ids should be distinct and non-empty: %q vs %q", a.ID(), b.ID())
	}
}

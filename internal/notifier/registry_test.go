package notifier

import (
	"context"
	"errors"
	"testing"
)

type mockNotifier struct {
	name       string
	sendCalled int
	last       Message
	shouldFail bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Send(ctx context.Context, msg Message) error {
	m.sendCalled++
	m.last = msg
	if m.shouldFail {
		return errors.New("send failed")
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	err := r.Register(mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duplicate registration should fail
	err = r.Register(mock)
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	mock := &mockNotifier{name: "test"}
	r.Register(mock)

	n, err := r.Get("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Name() != "test" {
		t.Errorf("expected 'test', got '%s'", n.Name())
	}

	// Non-existent notifier
	_, err = r.Get("nonexistent")
	if err == nil {
		t.Error("expected error for non-existent notifier")
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry()

	r.Register(&mockNotifier{name: "b"})
	r.Register(&mockNotifier{name: "a"})

	all := r.GetAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 notifiers, got %d", len(all))
	}
	if all[0].Name() != "a" {
		t.Errorf("expected notifiers ordered by name, got %s first", all[0].Name())
	}
	if r.Len() != 2 {
		t.Errorf("expected Len 2, got %d", r.Len())
	}
}

func TestRegistry_NotifyAll(t *testing.T) {
	r := NewRegistry()

	mock1 := &mockNotifier{name: "n1"}
	mock2 := &mockNotifier{name: "n2"}
	r.Register(mock1)
	r.Register(mock2)

	msg := Message{To: []string{"admin@example.com"}, Subject: "hello", Body: "world"}
	errs := r.NotifyAll(context.Background(), msg)

	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	if mock1.sendCalled != 1 {
		t.Errorf("expected mock1.sendCalled = 1, got %d", mock1.sendCalled)
	}
	if mock2.last.Subject != "hello" {
		t.Errorf("expected mock2 to receive subject hello, got %q", mock2.last.Subject)
	}
}

func TestRegistry_NotifyAll_WithFailure(t *testing.T) {
	r := NewRegistry()

	mock1 := &mockNotifier{name: "n1"}
	mock2 := &mockNotifier{name: "n2", shouldFail: true}
	r.Register(mock1)
	r.Register(mock2)

	errs := r.NotifyAll(context.Background(), Message{Subject: "s", Body: "b"})

	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %d", len(errs))
	}
	if _, ok := errs["n2"]; !ok {
		t.Error("expected error from n2")
	}
	if mock1.sendCalled != 1 {
		t.Error("a failing notifier must not stop the others")
	}
}

package conversation

import "testing"

func TestMemory_AppendPreservesOrder(t *testing.T) {
	m := NewMemory()
	m.Append(Turn{Role: RoleUser, Content: "What is a coupon?"})
	m.Append(Turn{Role: RoleAssistant, Content: "A periodic interest payment."})
	m.Append(Turn{Role: RoleUser, Content: "How often is it paid?"})

	turns := m.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant || turns[2].Role != RoleUser {
		t.Errorf("roles out of order: %v", turns)
	}
	if turns[1].Content != "A periodic interest payment." {
		t.Errorf("unexpected content: %q", turns[1].Content)
	}
}

func TestMemory_ClearThenAppend(t *testing.T) {
	m := NewMemory()
	m.Append(Turn{Role: RoleUser, Content: "hello"})
	m.Clear()

	if got := m.Turns(); len(got) != 0 {
		t.Fatalf("expected empty after clear, got %d turns", len(got))
	}

	// Clear is idempotent.
	m.Clear()
	if m.Len() != 0 {
		t.Fatal("double clear changed state")
	}

	m.Append(Turn{Role: RoleUser, Content: "again"})
	turns := m.Turns()
	if len(turns) != 1 || turns[0].Content != "again" {
		t.Fatalf("expected exactly the one appended turn, got %v", turns)
	}
}

func TestMemory_TurnsReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Append(Turn{Role: RoleUser, Content: "original"})

	view := m.Turns()
	view[0].Content = "mutated"

	if m.Turns()[0].Content != "original" {
		t.Error("mutating the returned slice must not affect memory")
	}
}

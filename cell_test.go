package actionz

import "testing"

func TestCell_SubscribeReplaysCurrent(t *testing.T) {
	cell := NewCell("seed")

	var got []string
	unsubscribe := cell.Subscribe(func(v string) { got = append(got, v) })
	defer unsubscribe()

	cell.Next("a")

	if len(got) != 2 || got[0] != "seed" || got[1] != "a" {
		t.Errorf("expected [seed a], got %v", got)
	}
}

func TestCell_WatchSkipsSeed(t *testing.T) {
	cell := NewCell(0)

	var got []int
	cell.Watch(func(v int) { got = append(got, v) })
	cell.Next(1)
	cell.Next(2)

	if len(got) != 2 || got[0] != 1 {
		t.Errorf("expected [1 2], got %v", got)
	}
	if cell.Value() != 2 {
		t.Errorf("expected value 2, got %d", cell.Value())
	}
	if cell.Pushes() != 2 {
		t.Errorf("expected 2 pushes, got %d", cell.Pushes())
	}
}

func TestCell_MulticastInOrder(t *testing.T) {
	cell := NewCell("")

	var order []string
	cell.Watch(func(string) { order = append(order, "first") })
	cell.Watch(func(string) { order = append(order, "second") })
	cell.Next("x")

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected [first second], got %v", order)
	}
}

func TestCell_Unsubscribe(t *testing.T) {
	cell := NewCell("")

	calls := 0
	unsubscribe := cell.Watch(func(string) { calls++ })
	other := cell.Watch(func(string) {})
	defer other()

	unsubscribe()
	unsubscribe()
	cell.Next("x")

	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
	if cell.Observers() != 1 {
		t.Errorf("expected 1 remaining observer, got %d", cell.Observers())
	}
}

func TestCell_ReplaysLatestNotSeed(t *testing.T) {
	cell := NewCell("seed")
	cell.Next("latest")

	var got string
	cell.Subscribe(func(v string) { got = v })

	if got != "latest" {
		t.Errorf("expected replay of latest value, got %q", got)
	}
}

package tree

import (
	"errors"
	"sort"
	"testing"
)

type mapLister map[string][]string

func (m mapLister) ListChildIDs(parentIDs []string) ([]string, error) {
	var out []string
	for _, p := range parentIDs {
		out = append(out, m[p]...)
	}
	return out, nil
}

func TestDescendants(t *testing.T) {
	children := mapLister{
		"root": {"a", "b"},
		"a":    {"a1", "a2"},
		"a1":   {"a1x"},
	}

	got, err := Descendants("root", 10, children)
	if err != nil {
		t.Fatalf("Descendants() error = %v", err)
	}
	sort.Strings(got)
	want := []string{"a", "a1", "a1x", "a2", "b"}
	if len(got) != len(want) {
		t.Fatalf("Descendants() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Descendants() = %v, want %v", got, want)
		}
	}
}

func TestDescendants_Leaf(t *testing.T) {
	got, err := Descendants("leaf", 10, mapLister{})
	if err != nil {
		t.Fatalf("Descendants() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Descendants() = %v, want empty", got)
	}
}

func TestDescendants_BreadthFirst(t *testing.T) {
	children := mapLister{
		"root": {"a"},
		"a":    {"b"},
		"b":    {"c"},
	}
	got, err := Descendants("root", 10, children)
	if err != nil {
		t.Fatalf("Descendants() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Descendants() order = %v, want %v", got, want)
		}
	}
}

func TestDescendants_Cycle(t *testing.T) {
	children := mapLister{
		"root": {"a"},
		"a":    {"root"},
	}
	_, err := Descendants("root", 10, children)
	if !errors.Is(err, ErrCorruptTree) {
		t.Errorf("Descendants() error = %v, want ErrCorruptTree", err)
	}
}

func TestDescendants_TooDeep(t *testing.T) {
	children := mapLister{
		"root": {"a"},
		"a":    {"b"},
		"b":    {"c"},
	}
	_, err := Descendants("root", 2, children)
	if !errors.Is(err, ErrCorruptTree) {
		t.Errorf("Descendants() error = %v, want ErrCorruptTree", err)
	}
}

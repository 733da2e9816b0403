package airride

import "testing"

func TestRunLabelerProducesNonEmptyDistinctLabels(t *testing.T) {
	labeler := newRunLabeler(1)
	first := labeler.next()
	second := labeler.next()

	if first == "" || second == "" {
		t.Fatal("labels should never be empty")
	}
	if first == second {
		t.Fatal("consecutive labels should differ")
	}
}

func TestRunLabelerSameSeedIsDeterministic(t *testing.T) {
	a := newRunLabeler(42).next()
	b := newRunLabeler(42).next()
	if a != b {
		t.Errorf("same seed produced different first labels: %q vs %q", a, b)
	}
}

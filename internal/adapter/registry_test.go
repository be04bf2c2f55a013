package adapter

import (
	"testing"

	"github.com/thenexusengine/tne_adbridge/internal/mediation"
)

type nopListener struct{}

func (nopListener) OnImpression(string)               {}
func (nopListener) OnClick(string)                    {}
func (nopListener) OnReward(string, mediation.Reward) {}
func (nopListener) OnDismiss(string)                  {}

func TestListenerRegistryTakeConsumes(t *testing.T) {
	r := newListenerRegistry()
	r.Register("req-1", nopListener{})

	if got := r.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}

	l, ok := r.Take("req-1")
	if !ok || l == nil {
		t.Fatal("Take should return the registered listener")
	}

	if _, ok := r.Take("req-1"); ok {
		t.Fatal("second Take should report no listener")
	}
	if got := r.Len(); got != 0 {
		t.Fatalf("Len = %d, want 0", got)
	}
}

func TestListenerRegistryRemove(t *testing.T) {
	r := newListenerRegistry()
	r.Register("req-1", nopListener{})
	r.Remove("req-1")

	if _, ok := r.Take("req-1"); ok {
		t.Fatal("Take after Remove should report no listener")
	}
}

func TestListenerRegistryRegisterReplaces(t *testing.T) {
	r := newListenerRegistry()
	first := nopListener{}
	second := &struct{ nopListener }{}

	r.Register("req-1", first)
	r.Register("req-1", second)

	if got := r.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}
	l, _ := r.Take("req-1")
	if l != mediation.AdListener(second) {
		t.Fatal("Take should return the replacement listener")
	}
}

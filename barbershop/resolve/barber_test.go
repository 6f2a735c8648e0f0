package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

func resolverFixture(t *testing.T) (*BarberResolver, store.Barbers) {
	t.Helper()

	barbers := store.NewMemory().Barbers
	seed := []model.Barber{
		{ID: "b1", Name: "John Smith", IsAvailable: true},
		{ID: "b2", Name: "Johnny Stone", IsAvailable: true},
		{ID: "b3", Name: "Sarah Davis", IsAvailable: true},
		{ID: "b4", Name: "Carlos Rivera", IsAvailable: false},
	}
	for _, b := range seed {
		if err := barbers.Insert(context.Background(), b); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	return NewBarberResolver(barbers), barbers
}

func TestResolveByID(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	got, err := r.Resolve(context.Background(), "b3")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Name != "Sarah Davis" {
		t.Fatalf("Resolve() = %q, want Sarah Davis", got.Name)
	}
}

func TestResolveExactNameBeatsFuzzy(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	got, err := r.Resolve(context.Background(), "john smith")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "b1" {
		t.Fatalf("Resolve() = %s, want b1", got.ID)
	}
}

func TestResolvePartialName(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	got, err := r.Resolve(context.Background(), "sara")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "b3" {
		t.Fatalf("Resolve(%q) = %s, want b3", "sara", got.ID)
	}
}

func TestResolveMisspelling(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	got, err := r.Resolve(context.Background(), "Sarah Daves")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "b3" {
		t.Fatalf("Resolve(%q) = %s, want b3", "Sarah Daves", got.ID)
	}
}

func TestResolveBelowCutoff(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	_, err := r.Resolve(context.Background(), "zxqwvut")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveEmptyReference(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	_, err := r.Resolve(context.Background(), "   ")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestResolveSkipsUnavailableForNameMatch(t *testing.T) {
	t.Parallel()

	r, _ := resolverFixture(t)
	_, err := r.Resolve(context.Background(), "Carlos Rivera")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound for unavailable barber", err)
	}

	// ID lookups ignore the availability filter.
	got, err := r.Resolve(context.Background(), "b4")
	if err != nil {
		t.Fatalf("Resolve() by id error = %v", err)
	}
	if got.Name != "Carlos Rivera" {
		t.Fatalf("Resolve() = %q, want Carlos Rivera", got.Name)
	}
}

func TestSimilarityTiesKeepFirstRanked(t *testing.T) {
	t.Parallel()

	candidates := []model.Barber{
		{ID: "a", Name: "Alan"},
		{ID: "b", Name: "Alan"},
	}
	m := similarityMatcher{cutoff: 0.6}
	got := m.match("aln", candidates)
	if got == nil || got.ID != "a" {
		t.Fatalf("match() = %v, want candidate a", got)
	}
}

package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

// similarityCutoff is the minimum normalized edit-similarity the fallback
// matcher accepts. Below it a typo is treated as no match at all.
const similarityCutoff = 0.6

// matcher is one stage of the name-resolution cascade. Stages run in order
// against the same candidate list; the first non-nil result wins.
type matcher interface {
	match(query string, candidates []model.Barber) *model.Barber
}

// BarberResolver resolves a free-form reference (stable id, full name,
// partial name, or a misspelling) to a barber record. Exact lookups always
// beat fuzzy ones; only available barbers are eligible for name matching.
type BarberResolver struct {
	barbers  store.Barbers
	matchers []matcher
}

func NewBarberResolver(barbers store.Barbers) *BarberResolver {
	return &BarberResolver{
		barbers: barbers,
		matchers: []matcher{
			exactNameMatcher{},
			substringMatcher{},
			tokenMatcher{},
			similarityMatcher{cutoff: similarityCutoff},
		},
	}
}

// Resolve returns store.ErrNotFound when no stage produces a match.
func (r *BarberResolver) Resolve(ctx context.Context, ref string) (*model.Barber, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, store.ErrNotFound
	}

	b, err := r.barbers.Get(ctx, ref)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	candidates, err := r.barbers.List(ctx, store.BarberFilter{OnlyAvailable: true})
	if err != nil {
		return nil, err
	}

	for _, m := range r.matchers {
		if b := m.match(ref, candidates); b != nil {
			return b, nil
		}
	}
	return nil, store.ErrNotFound
}

type exactNameMatcher struct{}

func (exactNameMatcher) match(query string, candidates []model.Barber) *model.Barber {
	for i := range candidates {
		if strings.EqualFold(candidates[i].Name, query) {
			return &candidates[i]
		}
	}
	return nil
}

type substringMatcher struct{}

func (substringMatcher) match(query string, candidates []model.Barber) *model.Barber {
	needle := strings.ToLower(query)
	for i := range candidates {
		if strings.Contains(strings.ToLower(candidates[i].Name), needle) {
			return &candidates[i]
		}
	}
	return nil
}

// tokenMatcher matches word-by-word: any query word that is a substring of,
// or contains, any word of the candidate's name ("sara" vs "Sarah").
type tokenMatcher struct{}

func (tokenMatcher) match(query string, candidates []model.Barber) *model.Barber {
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 {
		return nil
	}
	for i := range candidates {
		nameWords := strings.Fields(strings.ToLower(candidates[i].Name))
		for _, qw := range queryWords {
			for _, nw := range nameWords {
				if strings.Contains(nw, qw) || strings.Contains(qw, nw) {
					return &candidates[i]
				}
			}
		}
	}
	return nil
}

// similarityMatcher is the last resort for typos like "jone" -> "John
// Smith". It picks the single best-scoring candidate and only accepts it at
// or above the cutoff; a strictly better score is required to displace an
// earlier candidate, so ties resolve to the first-ranked one.
type similarityMatcher struct {
	cutoff float64
}

func (m similarityMatcher) match(query string, candidates []model.Barber) *model.Barber {
	var best *model.Barber
	bestScore := 0.0
	for i := range candidates {
		score := similarity(query, candidates[i].Name)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	if best == nil || bestScore < m.cutoff {
		return nil
	}
	return best
}

// similarity is a normalized edit-distance ratio in [0, 1], case-insensitive.
func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

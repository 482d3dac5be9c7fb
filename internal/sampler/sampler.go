package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"ArtForge/internal/model"
)

// MaxProduct bounds the number of combinations materialized for a shuffle.
// The permutation holds one int per combination, so the cap costs at most
// 32 MiB. Larger catalogs are rejected before anything is allocated.
const MaxProduct = 1 << 22

var (
	ErrProductTooLarge = errors.New("combination space too large to shuffle in memory")
	ErrNegativeCount   = errors.New("requested count must not be negative")
	ErrEmptyCategory   = errors.New("category has no options")
)

// OverRequestError reports a request for more artifacts than there are
// distinct combinations.
type OverRequestError struct {
	Requested int
	Available int
}

func (e *OverRequestError) Error() string {
	return fmt.Sprintf("requested %d artifacts, but only %d unique combinations available", e.Requested, e.Available)
}

// ProductSize returns the size of the Cartesian product of categories. It
// reports ErrProductTooLarge once the running product passes MaxProduct.
func ProductSize(categories []model.LayerCategory) (int, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	size := 1
	for _, c := range categories {
		n := len(c.Options)
		if n == 0 {
			return 0, fmt.Errorf("%w: %s", ErrEmptyCategory, c.Name)
		}
		if size > MaxProduct/n {
			return 0, fmt.Errorf("%w: more than %d", ErrProductTooLarge, MaxProduct)
		}
		size *= n
	}
	return size, nil
}

// Sampler draws unique combinations from the full product of a catalog.
type Sampler struct {
	rng *rand.Rand
}

// New returns a sampler seeded with seed. A zero seed draws a random one.
func New(seed uint64) *Sampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample shuffles the whole product and returns its first count elements, so
// every returned combination is distinct and the subset is uniform.
func (s *Sampler) Sample(categories []model.LayerCategory, count int) ([]model.Combination, error) {
	if count < 0 {
		return nil, ErrNegativeCount
	}
	total, err := ProductSize(categories)
	if err != nil {
		return nil, err
	}
	if count > total {
		return nil, &OverRequestError{Requested: count, Available: total}
	}

	order := make([]int, total)
	for i := range order {
		order[i] = i
	}
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	combos := make([]model.Combination, count)
	for i, index := range order[:count] {
		combos[i] = At(categories, index)
	}
	return combos, nil
}

// At decodes a product index into its combination. The last category varies
// fastest, matching the enumeration order of a nested loop over categories.
func At(categories []model.LayerCategory, index int) model.Combination {
	combo := make(model.Combination, len(categories))
	for i := len(categories) - 1; i >= 0; i-- {
		n := len(categories[i].Options)
		combo[i] = categories[i].Options[index%n]
		index /= n
	}
	return combo
}

package game

import "fmt"

// Tier labels how well a solved game went, by number of attempts.
type Tier int

const (
	TierNone Tier = iota
	TierBrilliant
	TierGood
	TierImprovable
	TierLow
)

var tierNames = map[Tier]string{
	TierNone:       "",
	TierBrilliant:  "brilliant",
	TierGood:       "good",
	TierImprovable: "improvable",
	TierLow:        "low",
}

// TierFor maps the attempt count of a solved game onto its tier.
func TierFor(attempts int) Tier {
	switch {
	case attempts <= 6:
		return TierBrilliant
	case attempts < 10:
		return TierGood
	case attempts < 15:
		return TierImprovable
	default:
		return TierLow
	}
}

func (t Tier) String() string {
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) {
	name, ok := tierNames[t]
	if !ok {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(name), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	for k, v := range tierNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("invalid tier %q", string(b))
}

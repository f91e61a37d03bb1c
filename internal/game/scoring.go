package game

// Code is an ordered 4-peg combination. The secret is always 4 distinct
// palette colors.
type Code [CodeLength]Color

// Score counts exact and misplaced pegs of guess against secret.
//
// Each guess position is judged on its own: an exact hit if it equals the
// secret at that position, otherwise misplaced if its color appears anywhere
// in the secret. No secret peg is consumed by a match, which is only correct
// while both codes hold 4 distinct colors. Callers must uphold that.
func Score(secret, guess Code) (exact, misplaced int) {
	for i := 0; i < CodeLength; i++ {
		if guess[i] == secret[i] {
			exact++
			continue
		}
		if secret.contains(guess[i]) {
			misplaced++
		}
	}
	return exact, misplaced
}

func (c Code) contains(color Color) bool {
	for _, x := range c {
		if x == color {
			return true
		}
	}
	return false
}

// Distinct reports whether no color repeats in c.
func (c Code) Distinct() bool {
	var seen [PaletteSize + 1]bool
	for _, x := range c {
		if !x.Valid() {
			return false
		}
		if seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}

// Names returns the wire names of every peg.
func (c Code) Names() []string {
	out := make([]string, len(c))
	for i, x := range c {
		out[i] = x.ID()
	}
	return out
}

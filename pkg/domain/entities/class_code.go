package entities

import "strings"

// ClassCode is a vehicle class token such as "cdmr". The third character
// encodes the transmission: 'a' is automatic, anything else manual.
type ClassCode string

// classChain is the total order of known classes, lowest to highest.
var classChain = []ClassCode{
	"mdmr", "mdar", "edmr", "edar", "cdmr", "cdar", "idmr",
	"idar", "sdah", "cfmr", "cfar", "ifmr", "ifar", "ifah",
}

var classRank = func() map[ClassCode]int {
	m := make(map[ClassCode]int, len(classChain))
	for i, c := range classChain {
		m[c] = i
	}
	return m
}()

// NormalizeClass trims and lower-cases a raw class label.
func NormalizeClass(raw string) ClassCode {
	return ClassCode(strings.ToLower(strings.TrimSpace(raw)))
}

// ClassChain returns a copy of the known classes in rank order.
func ClassChain() []ClassCode {
	out := make([]ClassCode, len(classChain))
	copy(out, classChain)
	return out
}

func (c ClassCode) normalized() ClassCode {
	return NormalizeClass(string(c))
}

// Rank returns the position of c in the chain, or -1 when c is unknown.
func (c ClassCode) Rank() int {
	if r, ok := classRank[c.normalized()]; ok {
		return r
	}
	return -1
}

// Known reports whether c is part of the chain.
func (c ClassCode) Known() bool {
	return c.Rank() >= 0
}

// IsAutomatic reports whether the transmission position holds 'a'.
func (c ClassCode) IsAutomatic() bool {
	n := c.normalized()
	return len(n) >= 3 && n[2] == 'a'
}

func (c ClassCode) String() string {
	return string(c)
}

// CanSatisfy reports whether a unit of class candidate may serve a
// reservation requesting class requested. An automatic request never accepts
// a manual unit; known classes accept equal or higher rank; unknown classes
// only match themselves.
func CanSatisfy(requested, candidate ClassCode) bool {
	r, u := requested.normalized(), candidate.normalized()
	if r.IsAutomatic() && !u.IsAutomatic() {
		return false
	}
	if !r.Known() || !u.Known() {
		return r == u
	}
	return u.Rank() >= r.Rank()
}

// UpgradePath lists the classes from requested up to the top of the chain,
// requested first. Unknown classes yield only themselves.
func UpgradePath(requested ClassCode) []ClassCode {
	r := requested.normalized()
	rank := r.Rank()
	if rank < 0 {
		return []ClassCode{r}
	}
	out := make([]ClassCode, len(classChain)-rank)
	copy(out, classChain[rank:])
	return out
}

// IsUpgrade reports whether unit is strictly above requested. Both classes
// must be known.
func IsUpgrade(requested, unit ClassCode) bool {
	r, u := requested.Rank(), unit.Rank()
	return r >= 0 && u >= 0 && u > r
}

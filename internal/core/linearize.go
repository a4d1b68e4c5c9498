package core

// Linearize rewrites Mixins to the flattened transitive module list (the
// superclass chain is not included; see Linearization), setting
// FlagClassLinearizationComputed. Stable and C3-compatible: duplicates are
// kept at their last occurrence, local precedence wins, and each mixin's
// own linearization is respected.
func (gs *GlobalState) Linearize(sym SymbolRef) {
	data := gs.Symbol(sym)
	if !data.IsClass() {
		panic("core: linearize of a non-class symbol")
	}
	if !data.IsClassModuleSet() {
		panic("core: linearize before the module/class bit is decided")
	}
	if data.IsClassLinearizationComputed() {
		return
	}

	flattened := gs.flattenMixins(sym, transitiveDepthLimit)
	data = gs.Symbol(sym)
	data.Mixins = flattened
	data.Flags |= FlagClassLinearizationComputed
}

// flattenMixins produces the transitive mixin list of sym, most-derived
// first, excluding sym itself and the superclass chain.
func (gs *GlobalState) flattenMixins(sym SymbolRef, depth int) []SymbolRef {
	if depth == 0 {
		return nil
	}
	data := gs.Symbol(sym)

	// Candidates in precedence order: each locally declared mixin followed
	// by its own ancestors.
	var candidates []SymbolRef
	for _, mixin := range data.Mixins {
		candidates = append(candidates, mixin)
		candidates = append(candidates, gs.flattenMixins(mixin, depth-1)...)
	}

	// Dedup keeping the last occurrence: a module re-included later sits
	// deeper in the precedence order.
	last := make(map[SymbolRef]int, len(candidates))
	for i, c := range candidates {
		last[c] = i
	}
	out := make([]SymbolRef, 0, len(last))
	for i, c := range candidates {
		if last[c] == i {
			out = append(out, c)
		}
	}
	return out
}

// Linearization returns the full ancestor order of sym: itself, its
// transitive mixins, then the superclass chain with its mixins, deduped by
// first occurrence.
func (gs *GlobalState) Linearization(sym SymbolRef) []SymbolRef {
	seen := make(map[SymbolRef]bool)
	var out []SymbolRef
	cur := sym
	for depth := transitiveDepthLimit; depth > 0 && cur.Exists(); depth-- {
		if !seen[cur] {
			seen[cur] = true
			out = append(out, cur)
		}
		data := gs.Symbol(cur)
		if data.IsClassLinearizationComputed() {
			for _, m := range data.Mixins {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		} else {
			for _, m := range gs.flattenMixins(cur, transitiveDepthLimit) {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		}
		super := data.SuperOrRebind
		if !data.IsClass() || !super.Exists() || super == cur {
			break
		}
		cur = super
	}
	return out
}

// DerivesFrom reports whether sub transitively inherits or mixes in super.
// Reflexive only through the linearization: a class derives from itself.
func (gs *GlobalState) DerivesFrom(sub, super SymbolRef) bool {
	return gs.derivesFrom(sub, super, transitiveDepthLimit)
}

func (gs *GlobalState) derivesFrom(sub, super SymbolRef, depth int) bool {
	if sub == super {
		return true
	}
	if depth == 0 {
		return false
	}
	cur := sub
	for ; depth > 0 && cur.Exists(); depth-- {
		data := gs.Symbol(cur)
		if cur == super {
			return true
		}
		if data.IsClass() && data.IsClassLinearizationComputed() {
			for _, m := range data.Mixins {
				if m == super {
					return true
				}
			}
		} else {
			for _, m := range data.Mixins {
				if m == super || gs.derivesFrom(m, super, depth-1) {
					return true
				}
			}
		}
		next := data.SuperOrRebind
		if !data.IsClass() || !next.Exists() || next == cur {
			return false
		}
		cur = next
	}
	return false
}

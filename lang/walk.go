package lang

// WalkAssets calls fn for every asset in the Lang, in declaration order.
// It is a read-only visitor over the already-built graph, not an edit API:
// there is no way for fn to mutate the Lang through its argument.
func (l *Lang) WalkAssets(fn func(*Asset)) {
	for _, a := range l.assets {
		fn(a)
	}
}

// WalkAttackSteps calls fn for every asset's effective attack-step set (see
// Asset.AttackSteps: inherited, override-aware, in the §8 property-2
// order), asset by asset in declaration order.
func (l *Lang) WalkAttackSteps(fn func(*Asset, *AttackStep)) {
	for _, a := range l.assets {
		for _, s := range a.AttackSteps() {
			fn(a, s)
		}
	}
}

package ember

// Overlap reports whether any member of a overlaps any member of b and
// calls notify for each overlapping pair. A group stands for its existing
// non-group descendants; nil stands for the whole world. Bodies are not
// separated.
func (w *World) Overlap(a, b *Node, notify func(a, b *Node)) bool {
	if a == nil {
		a = w.root
	}
	if b == nil {
		b = w.root
	}
	updateWorldTransform(w.root, identityTransform, 1, false)

	as := collectBodies(nil, a)
	if len(as) == 0 {
		return false
	}

	hit := false
	if a == b {
		for i := 0; i < len(as); i++ {
			for j := i + 1; j < len(as); j++ {
				if overlaps(as[i], as[j]) {
					hit = true
					if notify != nil {
						notify(as[i], as[j])
					}
				}
			}
		}
		return hit
	}

	bs := collectBodies(nil, b)
	for _, x := range as {
		for _, y := range bs {
			if x == y || !overlaps(x, y) {
				continue
			}
			hit = true
			if notify != nil {
				notify(x, y)
			}
		}
	}
	return hit
}

// collectBodies appends the existing non-group nodes of n's subtree.
func collectBodies(dst []*Node, n *Node) []*Node {
	if !n.Exists {
		return dst
	}
	if n.Type != NodeTypeGroup {
		dst = append(dst, n)
	}
	for _, c := range n.children {
		dst = collectBodies(dst, c)
	}
	return dst
}

// overlaps is a strict AABB test: touching edges do not overlap and
// zero-sized bodies never do.
func overlaps(a, b *Node) bool {
	if a.Width <= 0 || a.Height <= 0 || b.Width <= 0 || b.Height <= 0 {
		return false
	}
	ra, rb := a.Bounds(), b.Bounds()
	return ra.X < rb.X+rb.Width && rb.X < ra.X+ra.Width &&
		ra.Y < rb.Y+rb.Height && rb.Y < ra.Y+ra.Height
}

package pdfdoc

// ApplyRedactions removes everything under the marked regions: glyphs whose
// box centre lies in a region are cut from their text operators (surviving
// glyphs keep their positions), images overlapping a region are no longer
// painted, and each region is filled with black. Marks are cleared
// afterwards. Without marks the call does nothing.
func (p *Page) ApplyRedactions() error {
	if len(p.marks) == 0 {
		return nil
	}
	if p.doc.ctx == nil {
		return ErrClosed
	}
	if !p.normalized {
		if err := p.NormalizeContent(); err != nil {
			return err
		}
	}
	it, err := p.interpret()
	if err != nil {
		return err
	}

	removed := make(map[int]bool)
	byOp := make(map[int][]int)
	for i, g := range it.glyphs {
		byOp[g.op] = append(byOp[g.op], i)
		if g.movable && p.marked(g.Box.Center()) {
			removed[i] = true
		}
	}
	dropped := make(map[int]bool)
	for _, pl := range it.images {
		for _, m := range p.marks {
			if pl.rect.Intersects(m) {
				dropped[pl.op] = true
				break
			}
		}
	}

	out := make([]op, 0, len(p.ops)+len(p.marks)+6)
	for i, o := range p.ops {
		if dropped[i] {
			continue
		}
		idx := byOp[i]
		cut := false
		for _, gi := range idx {
			if removed[gi] {
				cut = true
				break
			}
		}
		if !cut {
			out = append(out, o)
			continue
		}
		out = append(out, rewriteShow(o, it.glyphs, idx, removed)...)
	}

	if it.inText {
		out = append(out, op{name: "ET"})
	}
	out = append(out, op{name: "q"})
	if inv, ok := it.gs.ctm.Inverse(); ok && inv != identity {
		out = append(out, matrixOp(inv))
	}
	out = append(out, op{name: "g", operands: []operand{numberOperand(0)}})
	for _, m := range p.marks {
		out = append(out, rectOp(m))
	}
	out = append(out, op{name: "f"}, op{name: "Q"})

	if err := p.setContent(out); err != nil {
		return err
	}
	p.marks = nil
	return nil
}

func (p *Page) marked(c Point) bool {
	for _, m := range p.marks {
		if m.Contains(c) {
			return true
		}
	}
	return false
}

// rewriteShow turns a text showing operator with removed glyphs into a TJ
// whose displacements stand in for the removed glyphs. ' and " keep their
// line and spacing effects as separate operators.
func rewriteShow(o op, glyphs []Glyph, idx []int, removed map[int]bool) []op {
	var prefix []op
	var elems []operand
	switch o.name {
	case "TJ":
		elems = o.operands[0].items
	case "Tj", "'", `"`:
		k := o.lastString()
		if k < 0 {
			return []op{o}
		}
		elems = []operand{o.operands[k]}
		if o.name == `"` {
			prefix = append(prefix,
				op{name: "Tw", operands: []operand{numberOperand(o.num(0))}},
				op{name: "Tc", operands: []operand{numberOperand(o.num(1))}},
			)
		}
		if o.name != "Tj" {
			prefix = append(prefix, op{name: "T*"})
		}
	default:
		return []op{o}
	}

	var (
		items []operand
		run   []byte
	)
	flush := func() {
		if len(run) > 0 {
			items = append(items, hexOperand(run))
			run = nil
		}
	}
	addNumber := func(v float64) {
		if n := len(items); n > 0 && items[n-1].kind == kindNumber && len(run) == 0 {
			items[n-1] = numberOperand(items[n-1].num + v)
			return
		}
		flush()
		items = append(items, numberOperand(v))
	}

	next := 0
	for k, e := range elems {
		if e.kind == kindNumber {
			addNumber(e.num)
			continue
		}
		if !e.isString() {
			continue
		}
		elem := k
		if o.name != "TJ" {
			elem = o.lastString()
		}
		for next < len(idx) && glyphs[idx[next]].elem == elem {
			g := glyphs[idx[next]]
			if removed[idx[next]] {
				addNumber(g.adjust)
			} else {
				run = append(run, g.code...)
			}
			next++
		}
		flush()
	}
	flush()
	return append(prefix, op{name: "TJ", operands: []operand{{kind: kindArray, items: items}}})
}

package pdfdoc

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resourceOperand returns the position of the operand of o that names a
// resource, and the resource category it names.
func resourceOperand(o op) (int, string, bool) {
	idx, cat := -1, ""
	switch o.name {
	case "Tf":
		idx, cat = 0, "Font"
	case "Do":
		idx, cat = 0, "XObject"
	case "gs":
		idx, cat = 0, "ExtGState"
	case "sh":
		idx, cat = 0, "Shading"
	case "cs", "CS":
		idx, cat = 0, "ColorSpace"
	case "scn", "SCN":
		idx, cat = len(o.operands)-1, "Pattern"
	case "BDC", "DP":
		idx, cat = 1, "Properties"
	}
	if idx < 0 || idx >= len(o.operands) || o.operands[idx].kind != kindName {
		return 0, "", false
	}
	return idx, cat, true
}

// inliner expands form XObjects into a page content stream.
type inliner struct {
	page *Page
	res  types.Dict
	cats map[string]types.Dict
	seq  int
}

// inlineForms replaces every painted form XObject by its own operators,
// wrapped in q/Q with the form matrix and a clip to its bounding box. The
// resources used by the forms are copied into page-local resources under
// fresh names, and forms the page no longer paints are dropped from them.
func (p *Page) inlineForms(ops []op) []op {
	rs := p.res()
	if !paintsForm(ops, rs) {
		return ops
	}
	in := &inliner{page: p, res: copyDict(rs.dict), cats: make(map[string]types.Dict)}
	p.dict.Update("Resources", in.res)
	rs.dict = in.res

	out := in.expand(ops, rs, nil, "", 0)
	in.dropUnpainted(out)
	rs.kinds, rs.forms = nil, nil
	return out
}

func paintsForm(ops []op, rs resourceSet) bool {
	for _, o := range ops {
		if o.name == "Do" && len(o.operands) == 1 && o.operands[0].kind == kindName &&
			rs.xobjectKind(o.operands[0].name) == "Form" {
			return true
		}
	}
	return false
}

// expand inlines the forms painted by ops. src resolves the names used in
// ops; names is the dictionary they are defined in, nil for the page's own
// resources, and prefix is what they are renamed with in the page.
func (in *inliner) expand(ops []op, src resourceSet, names types.Dict, prefix string, depth int) []op {
	out := make([]op, 0, len(ops))
	for _, o := range ops {
		if f := paintedForm(o, src, depth); f != nil {
			childNames, childPrefix := names, prefix
			if f.own != nil {
				childNames, childPrefix = f.own, in.nextPrefix()
			}
			out = append(out, op{name: "q"})
			if f.matrix != identity {
				out = append(out, matrixOp(f.matrix))
			}
			if f.clip {
				out = append(out, rectOp(f.bbox), op{name: "W"}, op{name: "n"})
			}
			out = append(out, in.expand(balance(f.ops), f.res, childNames, childPrefix, depth+1)...)
			out = append(out, op{name: "Q"})
			continue
		}
		if names != nil {
			o = in.rename(o, names, prefix)
		}
		out = append(out, o)
	}
	return out
}

func paintedForm(o op, src resourceSet, depth int) *form {
	if o.name != "Do" || depth >= maxFormDepth || len(o.operands) != 1 || o.operands[0].kind != kindName {
		return nil
	}
	name := o.operands[0].name
	if src.xobjectKind(name) != "Form" {
		return nil
	}
	return src.form(name)
}

func (in *inliner) nextPrefix() string {
	in.seq++
	return fmt.Sprintf("Fx%d", in.seq)
}

// rename copies the resource o refers to from names into the page and
// points o at the copy.
func (in *inliner) rename(o op, names types.Dict, prefix string) op {
	idx, cat, ok := resourceOperand(o)
	if !ok {
		return o
	}
	r := in.page.resolver()
	old := o.operands[idx].name
	obj, found := r.dict(r.entry(names, cat)).Find(old)
	if !found || obj == nil {
		return o
	}
	name := prefix + old
	in.category(cat).Update(name, obj)

	operands := append([]operand(nil), o.operands...)
	operands[idx] = nameOperand(name)
	return op{name: o.name, operands: operands}
}

// category returns a page-local copy of a resource category.
func (in *inliner) category(cat string) types.Dict {
	if d, ok := in.cats[cat]; ok {
		return d
	}
	r := in.page.resolver()
	d := copyDict(r.dict(r.entry(in.res, cat)))
	in.res.Update(cat, d)
	in.cats[cat] = d
	return d
}

func (in *inliner) dropUnpainted(ops []op) {
	painted := make(map[string]bool)
	for _, o := range ops {
		if o.name == "Do" && len(o.operands) == 1 && o.operands[0].kind == kindName {
			painted[o.operands[0].name] = true
		}
	}
	r := in.page.resolver()
	xobjects := in.category("XObject")
	for name, v := range xobjects {
		if !painted[name] && r.name(r.entry(r.dict(v), "Subtype")) == "Form" {
			delete(xobjects, name)
		}
	}
}

func matrixOp(m Matrix) op {
	return op{name: "cm", operands: []operand{
		numberOperand(m[0]), numberOperand(m[1]), numberOperand(m[2]),
		numberOperand(m[3]), numberOperand(m[4]), numberOperand(m[5]),
	}}
}

func rectOp(r Rect) op {
	return op{name: "re", operands: []operand{
		numberOperand(r.X0), numberOperand(r.Y0),
		numberOperand(r.Width()), numberOperand(r.Height()),
	}}
}

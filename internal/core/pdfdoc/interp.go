package pdfdoc

import "math"

// Glyph is one shown character code with its box in user space.
type Glyph struct {
	Text string
	Box  Rect
	Size float64

	op      int
	elem    int
	code    []byte
	adjust  float64
	movable bool
}

// placement is one painting of an image on the page.
type placement struct {
	name string
	op   int
	rect Rect
}

type resourceSet interface {
	font(name string) *font
	xobjectKind(name string) string
	form(name string) *form
}

type gstate struct {
	ctm         Matrix
	font        *font
	size        float64
	charSpacing float64
	wordSpacing float64
	scale       float64
	leading     float64
	rise        float64
}

// interpreter walks a content stream keeping the graphics and text state
// needed to position glyphs and images. Form XObjects are followed; what
// they show is attributed to the Do operator that painted them.
type interpreter struct {
	res    resourceSet
	gs     gstate
	stack  []gstate
	tm     Matrix
	tlm    Matrix
	inText bool
	glyphs []Glyph
	images []placement

	depth int
	outer int
}

func newInterpreter(res resourceSet) *interpreter {
	return &interpreter{
		res:   res,
		gs:    gstate{ctm: identity, scale: 1},
		tm:    identity,
		tlm:   identity,
		outer: -1,
	}
}

// at maps an operator index of the stream being run to the index of the
// page level operator responsible for it.
func (it *interpreter) at(i int) int {
	if it.outer >= 0 {
		return it.outer
	}
	return i
}

// runForm interprets a form XObject with the current graphics state, its
// matrix and its resources.
func (it *interpreter) runForm(at int, name string) {
	if it.depth >= maxFormDepth {
		return
	}
	f := it.res.form(name)
	if f == nil {
		return
	}
	res, gs, stack := it.res, it.gs, it.stack
	tm, tlm, inText, outer := it.tm, it.tlm, it.inText, it.outer

	if f.res != nil {
		it.res = f.res
	}
	it.gs.ctm = f.matrix.Mul(it.gs.ctm)
	it.stack = nil
	it.tm, it.tlm, it.inText = identity, identity, false
	it.outer = at
	it.depth++
	it.run(f.ops)
	it.depth--

	it.res, it.gs, it.stack = res, gs, stack
	it.tm, it.tlm, it.inText, it.outer = tm, tlm, inText, outer
}

func (it *interpreter) run(ops []op) {
	for i, o := range ops {
		switch o.name {
		case "q":
			it.stack = append(it.stack, it.gs)
		case "Q":
			if n := len(it.stack); n > 0 {
				it.gs = it.stack[n-1]
				it.stack = it.stack[:n-1]
			}
		case "cm":
			if len(o.operands) == 6 {
				it.gs.ctm = matrixOperands(o).Mul(it.gs.ctm)
			}
		case "BT":
			it.tm, it.tlm = identity, identity
			it.inText = true
		case "ET":
			it.inText = false
		case "Tc":
			it.gs.charSpacing = o.num(0)
		case "Tw":
			it.gs.wordSpacing = o.num(0)
		case "Tz":
			it.gs.scale = o.num(0) / 100
		case "TL":
			it.gs.leading = o.num(0)
		case "Ts":
			it.gs.rise = o.num(0)
		case "Tf":
			if len(o.operands) == 2 && o.operands[0].kind == kindName {
				it.gs.font = it.res.font(o.operands[0].name)
				it.gs.size = o.num(1)
			}
		case "Td":
			it.moveLine(o.num(0), o.num(1))
		case "TD":
			it.gs.leading = -o.num(1)
			it.moveLine(o.num(0), o.num(1))
		case "Tm":
			if len(o.operands) == 6 {
				it.tm = matrixOperands(o)
				it.tlm = it.tm
			}
		case "T*":
			it.moveLine(0, -it.gs.leading)
		case "Tj":
			it.showOperand(it.at(i), o)
		case "'":
			it.moveLine(0, -it.gs.leading)
			it.showOperand(it.at(i), o)
		case `"`:
			it.gs.wordSpacing = o.num(0)
			it.gs.charSpacing = o.num(1)
			it.moveLine(0, -it.gs.leading)
			it.showOperand(it.at(i), o)
		case "TJ":
			if len(o.operands) == 0 || o.operands[0].kind != kindArray {
				continue
			}
			for k, e := range o.operands[0].items {
				switch {
				case e.isString():
					it.show(it.at(i), k, e.str)
				case e.kind == kindNumber:
					tx := -e.num / 1000 * it.gs.size * it.gs.scale
					it.tm = translate(tx, 0).Mul(it.tm)
				}
			}
		case "Do":
			if len(o.operands) == 1 && o.operands[0].kind == kindName {
				name := o.operands[0].name
				switch it.res.xobjectKind(name) {
				case "Image":
					it.images = append(it.images, placement{name: name, op: it.at(i), rect: it.unitSquare()})
				case "Form":
					it.runForm(it.at(i), name)
				}
			}
		case "BI":
			it.images = append(it.images, placement{op: it.at(i), rect: it.unitSquare()})
		}
	}
}

func matrixOperands(o op) Matrix {
	return Matrix{o.num(0), o.num(1), o.num(2), o.num(3), o.num(4), o.num(5)}
}

func (it *interpreter) unitSquare() Rect {
	return it.gs.ctm.TransformRect(Rect{X0: 0, Y0: 0, X1: 1, Y1: 1})
}

func (it *interpreter) moveLine(tx, ty float64) {
	it.tlm = translate(tx, ty).Mul(it.tlm)
	it.tm = it.tlm
}

func (it *interpreter) showOperand(i int, o op) {
	if k := o.lastString(); k >= 0 {
		it.show(i, k, o.operands[k].str)
	}
}

// show positions every code of s and advances the text matrix.
func (it *interpreter) show(opIndex, elem int, s []byte) {
	f := it.gs.font
	if f == nil {
		f = fallbackFont()
	}
	gs := it.gs
	for _, code := range f.split(s) {
		c := codeValue(code)
		w0 := f.width(c)
		ws := 0.0
		if !f.composite && len(code) == 1 && code[0] == ' ' {
			ws = gs.wordSpacing
		}
		trm := Matrix{gs.size * gs.scale, 0, 0, gs.size, 0, gs.rise}.Mul(it.tm).Mul(gs.ctm)
		box := trm.TransformRect(Rect{X0: 0, Y0: f.descent, X1: w0, Y1: f.descent + 1})
		g := Glyph{
			Text: f.text(c),
			Box:  box,
			Size: math.Max(box.Height(), box.Width()),
			op:   opIndex,
			elem: elem,
			code: code,
		}
		if upright := trm[1] == 0 && trm[2] == 0; upright {
			g.Size = box.Height()
		}
		if gs.size != 0 && it.outer < 0 {
			g.adjust = -(w0*1000 + (gs.charSpacing+ws)*1000/gs.size)
			g.movable = true
		}
		it.glyphs = append(it.glyphs, g)

		tx := (w0*gs.size + gs.charSpacing + ws) * gs.scale
		it.tm = translate(tx, 0).Mul(it.tm)
	}
}

package pdfdoc

import "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

// maxFormDepth bounds the nesting of form XObjects that are interpreted or
// inlined. Deeper forms, and self-referencing ones, are not followed.
const maxFormDepth = 8

// resources resolves the named resources of a page or of a form XObject.
// Lookups are cached by name.
type resources struct {
	r     resolver
	dict  types.Dict
	fonts map[string]*font
	kinds map[string]string
	forms map[string]*form
}

// form is a parsed form XObject.
type form struct {
	ops    []op
	matrix Matrix
	bbox   Rect
	clip   bool

	// own is the form's Resources dictionary, nil when the form uses the
	// resources of whatever paints it.
	own types.Dict
	res resourceSet
}

func newResources(r resolver, d types.Dict) *resources {
	if d == nil {
		d = types.NewDict()
	}
	return &resources{r: r, dict: d}
}

func (rs *resources) category(cat string) types.Dict {
	return rs.r.dict(rs.r.entry(rs.dict, cat))
}

func (rs *resources) font(name string) *font {
	if f, ok := rs.fonts[name]; ok {
		return f
	}
	if rs.fonts == nil {
		rs.fonts = make(map[string]*font)
	}
	f := fallbackFont()
	if fd := rs.r.dict(rs.r.entry(rs.category("Font"), name)); fd != nil {
		f = loadFont(rs.r, fd)
	}
	rs.fonts[name] = f
	return f
}

func (rs *resources) xobjectKind(name string) string {
	if k, ok := rs.kinds[name]; ok {
		return k
	}
	if rs.kinds == nil {
		rs.kinds = make(map[string]string)
	}
	xd := rs.r.dict(rs.r.entry(rs.category("XObject"), name))
	k := rs.r.name(rs.r.entry(xd, "Subtype"))
	rs.kinds[name] = k
	return k
}

// form loads the form XObject called name. Anything that is not a readable
// form yields nil.
func (rs *resources) form(name string) *form {
	if f, ok := rs.forms[name]; ok {
		return f
	}
	if rs.forms == nil {
		rs.forms = make(map[string]*form)
	}
	f := rs.loadForm(name)
	rs.forms[name] = f
	return f
}

func (rs *resources) loadForm(name string) *form {
	o, found := rs.category("XObject").Find(name)
	if !found || o == nil || rs.r.ctx == nil {
		return nil
	}
	xd := rs.r.dict(o)
	if rs.r.name(rs.r.entry(xd, "Subtype")) != "Form" {
		return nil
	}
	data, err := rs.r.stream(o)
	if err != nil {
		return nil
	}
	ops, err := parseContent(data)
	if err != nil {
		return nil
	}
	f := &form{ops: ops, matrix: identity, res: rs}
	if m := rs.r.array(rs.r.entry(xd, "Matrix")); len(m) == 6 {
		for i := range m {
			v, _ := rs.r.number(m[i])
			f.matrix[i] = v
		}
	}
	f.bbox, f.clip = rs.r.rect(rs.r.entry(xd, "BBox"))
	if d := rs.r.dict(rs.r.entry(xd, "Resources")); d != nil {
		f.own = d
		f.res = newResources(rs.r, d)
	}
	return f
}

func copyDict(d types.Dict) types.Dict {
	out := types.NewDict()
	for k, v := range d {
		out[k] = v
	}
	return out
}

package textextract

import "math"

// Measure returns the width and height of the first page as it is
// displayed, so a page rotated by 90 or 270 degrees has its MediaBox sides
// swapped. A document without pages measures (0, 0).
func Measure(b []byte) (width, height float64, err error) {
	defer recoverMalformed(&err)
	r, err := openReader(b)
	if err != nil {
		return 0, 0, err
	}
	if r.NumPage() == 0 {
		return 0, 0, nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return 0, 0, nil
	}
	box := mediaBox(page)
	width, height = math.Abs(box[2]-box[0]), math.Abs(box[3]-box[1])
	if r := rotation(page); r == 90 || r == 270 {
		width, height = height, width
	}
	return width, height, nil
}

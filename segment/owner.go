package segment

import (
	"image"
	"iter"

	"influencemap/typedef"
)

// OwnerIndex maps every pixel to the id of the region that owns it, or
// typedef.NoRegion. It is the only structure consulted for point queries.
type OwnerIndex struct {
	ids []int32
	w   int
	h   int
}

func newOwnerIndex(w, h int) *OwnerIndex {
	ids := make([]int32, w*h)
	for i := range ids {
		ids[i] = typedef.NoRegion
	}
	return &OwnerIndex{ids: ids, w: w, h: h}
}

// Width returns the index width in pixels.
func (o *OwnerIndex) Width() int { return o.w }

// Height returns the index height in pixels.
func (o *OwnerIndex) Height() int { return o.h }

func (o *OwnerIndex) bounds() image.Rectangle {
	return image.Rect(0, 0, o.w, o.h)
}

// At returns the owning region id at (x,y), or typedef.NoRegion.
func (o *OwnerIndex) At(x, y int) int {
	if o.ids == nil || x < 0 || y < 0 || x >= o.w || y >= o.h {
		return typedef.NoRegion
	}
	return int(o.ids[y*o.w+x])
}

func (o *OwnerIndex) set(x, y, id int) {
	o.ids[y*o.w+x] = int32(id)
}

// Pixels yields the coordinates owned by r by scanning its bounding box.
func (o *OwnerIndex) Pixels(r *typedef.Region) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if o.ids == nil || r == nil {
			return
		}
		id := int32(r.ID)
		b := r.Bounds.Intersect(o.bounds())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := o.ids[y*o.w : (y+1)*o.w]
			for x := b.Min.X; x < b.Max.X; x++ {
				if row[x] != id {
					continue
				}
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// Count returns the number of pixels owned by id.
func (o *OwnerIndex) Count(id int) int {
	n := 0
	for _, v := range o.ids {
		if int(v) == id {
			n++
		}
	}
	return n
}

// Release drops the index storage on map teardown.
func (o *OwnerIndex) Release() {
	o.ids = nil
}

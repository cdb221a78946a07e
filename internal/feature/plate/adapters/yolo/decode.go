package yolo

import (
	"fmt"
	"sort"
)

// Box is a single decoded detection in source image coordinates.
type Box struct {
	X1, Y1, X2, Y2 float64
	Score          float32
	Class          int
}

func (b Box) area() float64 {
	return max(0, b.X2-b.X1) * max(0, b.Y2-b.Y1)
}

// IoU returns the intersection over union of two boxes.
func IoU(a, b Box) float64 {
	ix := min(a.X2, b.X2) - max(a.X1, b.X1)
	iy := min(a.Y2, b.Y2) - max(a.Y1, b.Y1)
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	union := a.area() + b.area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Decode reads a YOLOv8 detection head output of shape [1, 4+nc, N] or its
// transposed form [1, N, 4+nc] and returns every candidate whose best class
// score is at least conf. Boxes are mapped back through lb.
func Decode(out []float32, dims []int, conf float32, lb Letterbox) ([]Box, error) {
	if len(dims) != 3 || dims[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	rows, cols := dims[1], dims[2]
	if len(out) != rows*cols {
		return nil, fmt.Errorf("output length %d does not match shape %v", len(out), dims)
	}

	// 8400 anchors vs 4+nc attributes: the smaller axis holds attributes.
	attrs, anchors := rows, cols
	at := func(attr, anchor int) float32 { return out[attr*cols+anchor] }
	if rows > cols {
		attrs, anchors = cols, rows
		at = func(attr, anchor int) float32 { return out[anchor*cols+attr] }
	}
	if attrs < 5 {
		return nil, fmt.Errorf("output has %d attributes, need at least 5", attrs)
	}

	var boxes []Box
	for i := 0; i < anchors; i++ {
		best, score := -1, float32(0)
		for c := 4; c < attrs; c++ {
			if s := at(c, i); s > score {
				best, score = c-4, s
			}
		}
		if best < 0 || score < conf {
			continue
		}
		cx, cy, w, h := float64(at(0, i)), float64(at(1, i)), float64(at(2, i)), float64(at(3, i))
		boxes = append(boxes, Box{
			X1:    lb.ToSource(cx - w/2),
			Y1:    lb.ToSourceY(cy - h/2),
			X2:    lb.ToSource(cx + w/2),
			Y2:    lb.ToSourceY(cy + h/2),
			Score: score,
			Class: best,
		})
	}
	return boxes, nil
}

// NMS performs per-class greedy non-maximum suppression and returns the kept
// boxes ordered by descending score.
func NMS(boxes []Box, iou float64) []Box {
	sorted := make([]Box, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	kept := make([]Box, 0, len(sorted))
	for _, b := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.Class == b.Class && IoU(k, b) > iou {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, b)
		}
	}
	return kept
}

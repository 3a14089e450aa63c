package metric

import (
	"fmt"

	"github.com/menta2k/mask-evaluator/pkg/mask"
)

// Overlap holds the pixel counts an IoU score is derived from
type Overlap struct {
	Intersection int
	Union        int
}

// IoU returns intersection over union, or 0 when the union is empty
func (o Overlap) IoU() float64 {
	return SafeDivide(float64(o.Intersection), float64(o.Union))
}

// ShapeMismatchError is returned when the two masks differ in size
type ShapeMismatchError struct {
	TrueWidth, TrueHeight int
	PredWidth, PredHeight int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("mask shape mismatch: truth %dx%d, prediction %dx%d",
		e.TrueWidth, e.TrueHeight, e.PredWidth, e.PredHeight)
}

// Compute counts the intersection and union of two binary masks
func Compute(trueMask, predMask *mask.BinaryMask) (Overlap, error) {
	if !trueMask.SameShape(predMask) {
		return Overlap{}, &ShapeMismatchError{
			TrueWidth:  trueMask.Width,
			TrueHeight: trueMask.Height,
			PredWidth:  predMask.Width,
			PredHeight: predMask.Height,
		}
	}

	var o Overlap
	for y := 0; y < trueMask.Height; y++ {
		tr, pr := trueMask.Values[y], predMask.Values[y]
		for x := 0; x < trueMask.Width; x++ {
			t, p := tr[x] == 1, pr[x] == 1
			if t && p {
				o.Intersection++
			}
			if t || p {
				o.Union++
			}
		}
	}
	return o, nil
}

// IoU computes the Intersection-over-Union score of two binary masks
func IoU(trueMask, predMask *mask.BinaryMask) (float64, error) {
	o, err := Compute(trueMask, predMask)
	if err != nil {
		return 0, err
	}
	return o.IoU(), nil
}

// SafeDivide returns num/den, or 0 when den is 0
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

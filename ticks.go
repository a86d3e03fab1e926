package hgcalhistory

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks places labelled major ticks on round multiples of a power of
// ten, with unlabelled minor ticks between them. Detector coordinates in cm
// span several hundred units with millimetre structure, which the default
// gonum ticker labels poorly.
type PreciseTicks struct {
	NSuggestedTicks int
}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	n := t.NSuggestedTicks
	if n < 2 {
		n = 4
	}
	if !(max > min) {
		return []plot.Tick{{Value: min, Label: formatFloatTick(min, -1)}}
	}

	tens := math.Pow10(int(math.Floor(math.Log10(max - min))))
	for (max-min)/tens < float64(n)-1 {
		tens /= 10
	}

	majorMult := int((max - min) / tens / float64(n-1))
	switch majorMult {
	case 0:
		majorMult = 1
	case 7:
		majorMult = 6
	case 9:
		majorMult = 8
	}
	majorDelta := float64(majorMult) * tens

	var ticks []plot.Tick
	val := math.Floor(min/majorDelta) * majorDelta
	for ; val <= max; val += majorDelta {
		if val < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	top := math.Max(math.Abs(val), majorDelta)
	prec := int(math.Ceil(math.Log10(top)) - math.Floor(math.Log10(majorDelta)))
	for i := range ticks {
		ticks[i].Value = round(ticks[i].Value, prec)
		ticks[i].Label = formatFloatTick(ticks[i].Value, -1)
	}

	minorDelta := majorDelta / 2
	switch majorMult {
	case 3, 6:
		minorDelta = majorDelta / 3
	case 5:
		minorDelta = majorDelta / 5
	}

	majors := len(ticks)
	for val = math.Floor(min/minorDelta) * minorDelta; val <= max; val += minorDelta {
		if val < min || hasTick(ticks[:majors], val) {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	return ticks
}

func hasTick(ticks []plot.Tick, v float64) bool {
	for _, t := range ticks {
		if t.Value == v {
			return true
		}
	}
	return false
}

func round(x float64, prec int) float64 {
	if x == 0 {
		// Make sure zero is returned
		// without the negative bit set.
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	intermed := x * pow
	if math.IsInf(intermed, 0) {
		return x
	}
	if x < 0 {
		x = math.Ceil(intermed - 0.5)
	} else {
		x = math.Floor(intermed + 0.5)
	}
	if x == 0 {
		return 0
	}
	return x / pow
}

func formatFloatTick(v float64, prec int) string {
	return strconv.FormatFloat(v, 'g', prec, 64)
}

package geometry

// z positions in cm of the HGCAL layers, from the positive and negative
// endcap as simulated. Both tables carry 28 entries.
var (
	hgcalZPos = []float64{
		322.10275269, 323.04727173, 325.07275391, 326.01730347, 328.04275513,
		328.98727417, 331.01272583, 331.95724487, 333.98275757, 334.92724609,
		336.95275879, 337.89724731, 339.92276001, 340.86727905, 342.89273071,
		343.83724976, 345.86276245, 346.80725098, 348.83276367, 349.7772522,
		351.80276489, 352.7472229, 354.77279663, 355.71725464, 357.74276733,
		358.68725586, 360.71276855, 361.65725708,
	}
	hgcalZNeg = []float64{
		-322.10275269, -323.04727173, -325.07275391, -326.01730347, -328.04275513,
		-328.98727417, -331.01272583, -331.95724487, -333.98275757, -334.92724609,
		-336.95275879, -337.89724731, -339.92276001, -340.86721802, -342.89279175,
		-343.83724976, -345.86276245, -346.80725098, -348.83276367, -349.7772522,
		-351.80276489, -352.74728394, -354.7727356, -355.71725464, -357.74276733,
		-358.68725586, -360.71276855, -361.65725708,
	}
)

// HGCalLayers returns the layer numbers registered for the default tables,
// 1 through 28.
func HGCalLayers() []int {
	layers := make([]int, len(hgcalZPos))
	for i := range layers {
		layers[i] = i + 1
	}
	return layers
}

// HGCal returns the detector described by the built-in tables.
func HGCal() (*Detector, error) {
	return New(HGCalLayers(), hgcalZPos, hgcalZNeg)
}

// MustHGCal is HGCal for package-level initialization; it panics if the
// built-in tables are inconsistent.
func MustHGCal() *Detector {
	d, err := HGCal()
	if err != nil {
		panic(err)
	}
	return d
}

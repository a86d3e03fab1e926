package event

import "image/color"

// PDGUnspecified is the code used for tracks of unknown type.
const PDGUnspecified int32 = 1

var pdgColors = map[int32]color.RGBA{
	1:   {R: 211, G: 211, B: 211, A: 255}, // unspecified, light grey
	13:  {R: 148, G: 0, B: 211, A: 255},   // muon, violet
	11:  {R: 0, G: 100, B: 0, A: 255},     // electron, dark green
	22:  {R: 255, A: 255},                 // photon, red
	211: {R: 255, G: 140, A: 255},         // pion, orange
}

var otherColor = color.RGBA{R: 105, G: 105, B: 105, A: 255}

var pdgTitles = map[int32]string{
	1:   "?",
	13:  "mu",
	11:  "e",
	22:  "gamma",
	211: "pi",
}

func absPDG(pdgid int32) int32 {
	if pdgid < 0 {
		return -pdgid
	}
	return pdgid
}

// PDGColor returns the display color of a particle type; particle and
// antiparticle share a color.
func PDGColor(pdgid int32) color.RGBA {
	if c, ok := pdgColors[absPDG(pdgid)]; ok {
		return c
	}
	return otherColor
}

func PDGTitle(pdgid int32) string {
	if t, ok := pdgTitles[absPDG(pdgid)]; ok {
		return t
	}
	return "other"
}

// LegendPDGs lists the particle types that have their own color, in
// ascending order.
func LegendPDGs() []int32 {
	return []int32{1, 11, 13, 22, 211}
}

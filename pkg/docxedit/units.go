package docxedit

import "math"

// OOXML length units. Drawing extents are EMU, paragraph measurements are
// twips, run sizes are half-points.
const (
	emuPerInch = 914400
	emuPerCm   = 360000
	emuPerPx   = 9525 // at 96 DPI

	twipsPerInch = 1440
	cmPerInch    = 2.54
)

// emuToCm converts EMU to centimeters rounded to two decimal places.
func emuToCm(emu int64) float64 {
	return math.Round(float64(emu)/emuPerCm*100) / 100
}

// cmToEMU converts centimeters to EMU.
func cmToEMU(cm float64) int64 {
	return int64(math.Round(cm * emuPerCm))
}

// pxToEMU converts pixels at 96 DPI to EMU.
func pxToEMU(px int) int64 {
	return int64(px) * emuPerPx
}

// twipsToCm converts twips to centimeters rounded to two decimal places.
func twipsToCm(twips int) float64 {
	return math.Round(float64(twips)*cmPerInch/twipsPerInch*100) / 100
}

// cmToTwips converts centimeters to twips.
func cmToTwips(cm float64) int {
	return int(math.Round(cm * twipsPerInch / cmPerInch))
}

// ptToTwips converts points to twips.
func ptToTwips(pt float64) int {
	return int(math.Round(pt * 20))
}

// ptToHalfPoints converts points to half points.
func ptToHalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

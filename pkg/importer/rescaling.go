package importer

// Rescaling maps an input intensity window linearly onto an output range.
// Inputs below InMin map to OutMin and inputs above InMax map to OutMax.
type Rescaling struct {
	InMin, InMax   int
	OutMin, OutMax uint8
}

// NewRescaling returns the window [inMin, inMax] -> [outMin, outMax].
func NewRescaling(inMin, inMax int, outMin, outMax uint8) Rescaling {
	return Rescaling{InMin: inMin, InMax: inMax, OutMin: outMin, OutMax: outMax}
}

// Apply rescales v.
func (r Rescaling) Apply(v int) uint8 {
	switch {
	case v <= r.InMin:
		return r.OutMin
	case v >= r.InMax:
		return r.OutMax
	}
	span := int64(r.OutMax) - int64(r.OutMin)
	return uint8(int64(r.OutMin) + span*int64(v-r.InMin)/int64(r.InMax-r.InMin))
}

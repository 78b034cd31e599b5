package material

import (
	"math"
)

// NewEmissive creates a light-emitting material that radiates over the
// whole front hemisphere
func NewEmissive(radiance *Texture) (*Material, error) {
	return NewSpotEmissive(radiance, math.Pi)
}

// NewSpotEmissive creates an emitter that only radiates within beamAngle
// (full cone angle, radians) of the surface normal. π or more is a full
// hemisphere.
func NewSpotEmissive(radiance *Texture, beamAngle float64) (*Material, error) {
	if radiance == nil {
		return nil, invalidMaterial("emissive material needs a radiance")
	}
	if !(beamAngle > 0) {
		return nil, invalidMaterial("beam angle %v is not positive", beamAngle)
	}
	cosBeam := -1.0
	if beamAngle < math.Pi {
		cosBeam = math.Cos(beamAngle / 2)
	}
	return &Material{kind: KindEmissive, radiance: radiance, cosBeam: cosBeam}, nil
}

// Focal-plane projection of equatorial coordinates
package projection

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// plateCoeffs are the coefficients of the empirical radial distortion
// polynomial of the corrector optics, highest degree first. Input is the
// angular separation from the plate center in radians, output is the radial
// distance on the focal plane in mm.
var plateCoeffs = [4]float64{8.297e5, -1750.0, 1.394e4, 0.0}

// PlateDist maps an angular separation theta (radians) from the tile center
// to a radial distance (mm) on the focal plane.
func PlateDist(theta float64) float64 {
	r := plateCoeffs[0]
	for _, c := range plateCoeffs[1:] {
		r = r*theta + c
	}
	return r
}

// RadecToXY projects a target at (ra, dec) onto the focal plane of a tile
// pointed at (tileRA, tileDec). All inputs are degrees; the returned x, y are
// mm relative to the plate center.
//
// The target and the tile center are treated as unit vectors on the sphere.
// Rotating by Rz(-phi_tile) and then Ry(-theta_tile) carries the tile center
// onto the +z axis; the target vector's residual angle from the pole is the
// angular separation fed through PlateDist, and its azimuthal direction fixes
// the orientation of (x, y).
func RadecToXY(ra, dec, tileRA, tileDec float64) (x, y float64) {
	objTheta := (90.0 - dec) * math.Pi / 180.0
	objPhi := ra * math.Pi / 180.0
	tileTheta := (90.0 - tileDec) * math.Pi / 180.0
	tilePhi := tileRA * math.Pi / 180.0

	obj := mat.NewVecDense(3, []float64{
		math.Sin(objTheta) * math.Cos(objPhi),
		math.Sin(objTheta) * math.Sin(objPhi),
		math.Cos(objTheta),
	})

	var rot mat.Dense
	rot.Mul(rotY(-tileTheta), rotZ(-tilePhi))

	var n mat.VecDense
	n.MulVec(&rot, obj)

	cosSep := n.AtVec(2)
	if cosSep > 1 {
		cosSep = 1
	} else if cosSep < -1 {
		cosSep = -1
	}
	thetaSep := math.Acos(cosSep)

	// A target coincident with the tile center has no defined azimuth.
	planar := math.Hypot(n.AtVec(0), n.AtVec(1))
	if thetaSep == 0 || planar == 0 {
		return 0, 0
	}

	radius := PlateDist(thetaSep)
	return radius * n.AtVec(0) / planar, radius * n.AtVec(1) / planar
}

// rotZ returns the rotation matrix about the z axis by angle a (radians).
func rotZ(a float64) *mat.Dense {
	c, s := math.Cos(a), math.Sin(a)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// rotY returns the rotation matrix about the y axis by angle a (radians).
func rotY(a float64) *mat.Dense {
	c, s := math.Cos(a), math.Sin(a)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

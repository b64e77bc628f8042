// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package healpix

import "testing"

func TestAng2PixRingPoles(t *testing.T) {
	// depth 0 (nside=1) covers the whole sky in 12 pixels; the poles are
	// the one pair of points whose pixel index does not depend on
	// longitude, since the tmp term collapses to zero exactly at za=1 and
	// an exact pole then takes the polar ring's first pixel.
	north, err := Ang2PixRing(0, 123, 90)
	if err != nil {
		t.Fatalf("Ang2PixRing failed: %v", err)
	}
	if north != 0 {
		t.Errorf("north pole index = %d, want 0", north)
	}
	south, err := Ang2PixRing(0, 57, -90)
	if err != nil {
		t.Fatalf("Ang2PixRing failed: %v", err)
	}
	if south != 8 {
		t.Errorf("south pole index = %d, want 8", south)
	}
	if north == south {
		t.Error("north and south poles mapped to the same pixel")
	}
}

func TestAng2PixRingPoleIndependentOfLongitude(t *testing.T) {
	base, err := Ang2PixRing(3, 0, 90)
	if err != nil {
		t.Fatalf("Ang2PixRing failed: %v", err)
	}
	for _, lon := range []float64{10, 90, 181, 359} {
		got, err := Ang2PixRing(3, lon, 90)
		if err != nil {
			t.Fatalf("Ang2PixRing failed: %v", err)
		}
		if got != base {
			t.Errorf("Ang2PixRing(3, %v, 90) = %d, want %d (pole is longitude-independent)", lon, got, base)
		}
	}
}

func TestAng2PixRingRange(t *testing.T) {
	depth := 4
	nside := int64(1) << uint(depth)
	npix := 12 * nside * nside
	for lon := 0.0; lon < 360; lon += 37 {
		for lat := -89.0; lat < 90; lat += 41 {
			idx, err := Ang2PixRing(depth, lon, lat)
			if err != nil {
				t.Fatalf("Ang2PixRing(%d, %v, %v) failed: %v", depth, lon, lat, err)
			}
			if idx < 0 || idx >= npix {
				t.Errorf("Ang2PixRing(%d, %v, %v) = %d, out of [0,%d)", depth, lon, lat, idx, npix)
			}
		}
	}
}

func TestAng2PixRingDepthOutOfRange(t *testing.T) {
	if _, err := Ang2PixRing(-1, 0, 0); err == nil {
		t.Error("Ang2PixRing(-1, ...) succeeded, want error")
	}
	if _, err := Ang2PixRing(MaxDepth+1, 0, 0); err == nil {
		t.Error("Ang2PixRing(MaxDepth+1, ...) succeeded, want error")
	}
}

func TestAng2PixRingNotFinite(t *testing.T) {
	nan := 0.0
	nan /= nan
	if _, err := Ang2PixRing(4, nan, 0); err == nil {
		t.Error("Ang2PixRing(NaN, ...) succeeded, want error")
	}
}

func TestAng2PixRingLongitudeWrap(t *testing.T) {
	a, err := Ang2PixRing(6, 10, 30)
	if err != nil {
		t.Fatalf("Ang2PixRing failed: %v", err)
	}
	b, err := Ang2PixRing(6, 370, 30)
	if err != nil {
		t.Fatalf("Ang2PixRing failed: %v", err)
	}
	if a != b {
		t.Errorf("Ang2PixRing(10deg) = %d, Ang2PixRing(370deg) = %d, want equal", a, b)
	}
}

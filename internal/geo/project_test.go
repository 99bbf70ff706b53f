package geo

import (
	"math"
	"testing"
)

func TestProject_FitsAndCenters(t *testing.T) {
	// Track twice as wide (east-west) as tall, away from the equator.
	// At 60°N a longitude degree is half a latitude degree, so a 0.08°
	// lon span against a 0.02° lat span is 2:1 on the ground.
	lat := []float64{60.00, 60.01, 60.00, 59.99}
	lon := []float64{10.00, 10.04, 10.08, 10.04}

	p := Project(lat, lon, 400, 400, 20)
	if len(p.X) != 4 || len(p.Y) != 4 {
		t.Fatalf("projection has %d/%d points, want 4", len(p.X), len(p.Y))
	}

	// All points inside the padded box.
	for i := range p.X {
		if p.X[i] < 20-1e-9 || p.X[i] > 380+1e-9 {
			t.Errorf("X[%d] = %v outside [20, 380]", i, p.X[i])
		}
		if p.Y[i] < 20-1e-9 || p.Y[i] > 380+1e-9 {
			t.Errorf("Y[%d] = %v outside [20, 380]", i, p.Y[i])
		}
	}

	// The limiting (wide) axis fills the available span exactly and the
	// short axis is centered.
	minX, maxX := extent(p.X)
	minY, maxY := extent(p.Y)
	if math.Abs(minX-20) > 1e-6 || math.Abs(maxX-380) > 1e-6 {
		t.Errorf("x range [%v, %v], want [20, 380]", minX, maxX)
	}
	usedH := maxY - minY
	wantH := (maxX - minX) / 2 // 2:1 ground aspect
	if math.Abs(usedH-wantH) > 1 {
		t.Errorf("y span = %v, want ~%v (aspect preserved)", usedH, wantH)
	}
	if math.Abs((minY-20)-(380-maxY)) > 1e-6 {
		t.Errorf("y slack not centered: top %v, bottom %v", minY-20, 380-maxY)
	}
}

// The same geographic aspect must survive any output rectangle: scaling
// is uniform, never per-axis stretch.
func TestProject_AspectInvariant(t *testing.T) {
	lat := []float64{36.580, 36.590, 36.585, 36.578}
	lon := []float64{-121.760, -121.752, -121.740, -121.748}

	boxes := [][2]float64{{400, 400}, {800, 200}, {120, 600}, {64, 48}}

	var wantRatio float64
	for i, box := range boxes {
		p := Project(lat, lon, box[0], box[1], 5)
		minX, maxX := extent(p.X)
		minY, maxY := extent(p.Y)
		if maxY-minY < 1e-12 {
			t.Fatalf("box %v: degenerate projection", box)
		}
		ratio := (maxX - minX) / (maxY - minY)
		if i == 0 {
			wantRatio = ratio
			continue
		}
		if math.Abs(ratio-wantRatio) > wantRatio*0.001 {
			t.Errorf("box %v: aspect %v, want %v", box, ratio, wantRatio)
		}
	}
}

func TestProject_NorthIsUp(t *testing.T) {
	lat := []float64{36.58, 36.59} // second point is further north
	lon := []float64{-121.75, -121.75}

	p := Project(lat, lon, 100, 100, 0)
	if p.Y[1] >= p.Y[0] {
		t.Errorf("northern point y=%v not above southern y=%v", p.Y[1], p.Y[0])
	}
}

func TestProject_Degenerate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p := Project(nil, nil, 100, 100, 0)
		if len(p.X) != 0 {
			t.Errorf("empty input produced %d points", len(p.X))
		}
	})

	t.Run("single point", func(t *testing.T) {
		p := Project([]float64{36.58}, []float64{-121.75}, 100, 100, 10)
		if len(p.X) != 1 {
			t.Fatalf("got %d points", len(p.X))
		}
		if math.IsNaN(p.X[0]) || math.IsInf(p.X[0], 0) {
			t.Errorf("X = %v, want finite", p.X[0])
		}
	})

	t.Run("collinear east-west", func(t *testing.T) {
		lat := []float64{36.58, 36.58, 36.58}
		lon := []float64{-121.75, -121.74, -121.73}
		p := Project(lat, lon, 100, 100, 0)
		for i := range p.Y {
			if math.IsNaN(p.Y[i]) {
				t.Fatalf("Y[%d] is NaN", i)
			}
		}
	})

	t.Run("padding exceeds area", func(t *testing.T) {
		lat := []float64{36.58, 36.59}
		lon := []float64{-121.75, -121.74}
		p := Project(lat, lon, 10, 10, 20)
		for i := range p.X {
			if math.IsNaN(p.X[i]) || math.IsNaN(p.Y[i]) {
				t.Fatalf("point %d is NaN with oversized padding", i)
			}
		}
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		p := Project([]float64{1, 2}, []float64{1}, 100, 100, 0)
		if len(p.X) != 0 {
			t.Error("mismatched inputs should produce an empty projection")
		}
	})
}

func TestProject_PixelDistanceMatchesGeodesic(t *testing.T) {
	lat := []float64{45.0, 45.001}
	lon := []float64{-122.0, -121.999}

	p := Project(lat, lon, 400, 400, 20)

	dx := p.X[1] - p.X[0]
	dy := p.Y[1] - p.Y[0]
	pixelDist := math.Hypot(dx, dy)

	// Latitude is the limiting axis here, so the uniform scale is the
	// 360 px plot span over the geodesic length of the latitude extent.
	latSpan := GeodesicDistance(45.0, -122.0, 45.001, -122.0)
	wantScale := 360 / latSpan

	geodesic := GeodesicDistance(45.0, -122.0, 45.001, -121.999)
	gotScale := pixelDist / geodesic
	if math.Abs(gotScale-wantScale)/wantScale > 0.01 {
		t.Errorf("pixels per meter = %.4f, want %.4f within 1%%", gotScale, wantScale)
	}

	// No lateral stretch: the screen extent ratio keeps the
	// cos(latitude) foreshortening of the longitude axis.
	wantRatio := math.Cos(45.0005 * math.Pi / 180)
	gotRatio := math.Abs(dx) / math.Abs(dy)
	if math.Abs(gotRatio-wantRatio)/wantRatio > 0.01 {
		t.Errorf("dx/dy = %.4f, want %.4f within 1%%", gotRatio, wantRatio)
	}
}

func TestProject3D(t *testing.T) {
	lat := []float64{36.580, 36.590, 36.585}
	lon := []float64{-121.760, -121.750, -121.745}
	alt := []float64{200, 230, 215}

	p := Project3D(lat, lon, alt, 2)
	if len(p.X) != 3 {
		t.Fatalf("got %d points", len(p.X))
	}

	// Ground plane is centered at the origin within the world cube.
	for i := range p.X {
		if math.Abs(p.X[i]) > World3DSize/2+1e-9 || math.Abs(p.Y[i]) > World3DSize/2+1e-9 {
			t.Errorf("point %d (%v, %v) outside world cube", i, p.X[i], p.Y[i])
		}
	}

	// Altitude midrange maps to z = 0 and is symmetric around it.
	if p.Z[2] != 0 {
		t.Errorf("midrange altitude z = %v, want 0", p.Z[2])
	}
	if math.Abs(p.Z[0]+p.Z[1]) > 1e-9 {
		t.Errorf("z not symmetric: %v vs %v", p.Z[0], p.Z[1])
	}
	if p.Z[1] <= p.Z[0] {
		t.Error("higher altitude should project to larger z")
	}
}

func TestProject3D_ExaggerationScalesZ(t *testing.T) {
	lat := []float64{36.580, 36.590}
	lon := []float64{-121.760, -121.750}
	alt := []float64{200, 230}

	p1 := Project3D(lat, lon, alt, 1)
	p3 := Project3D(lat, lon, alt, 3)
	if math.Abs(p3.Z[1]-3*p1.Z[1]) > 1e-9 {
		t.Errorf("z at 3x = %v, want %v", p3.Z[1], 3*p1.Z[1])
	}

	// Non-positive exaggeration selects the default.
	pd := Project3D(lat, lon, alt, 0)
	want := Project3D(lat, lon, alt, DefaultElevationExaggeration)
	if pd.Z[1] != want.Z[1] {
		t.Errorf("default exaggeration z = %v, want %v", pd.Z[1], want.Z[1])
	}
}

func TestProject3D_NilAltitude(t *testing.T) {
	lat := []float64{36.580, 36.590}
	lon := []float64{-121.760, -121.750}

	p := Project3D(lat, lon, nil, 1)
	for i, z := range p.Z {
		if z != 0 {
			t.Errorf("Z[%d] = %v, want 0 for a flat track", i, z)
		}
	}
}

func TestGeodesicDistance(t *testing.T) {
	// One latitude degree is ~111 km everywhere.
	d := GeodesicDistance(36, -121, 37, -121)
	if d < 110000 || d > 112500 {
		t.Errorf("1° latitude = %v m, want ~111 km", d)
	}

	// One longitude degree shrinks with latitude.
	dEq := GeodesicDistance(0, 10, 0, 11)
	dHi := GeodesicDistance(60, 10, 60, 11)
	if dHi >= dEq {
		t.Errorf("longitude degree at 60° (%v) should be shorter than at equator (%v)", dHi, dEq)
	}
	if math.Abs(dHi-dEq/2) > dEq*0.02 {
		t.Errorf("at 60° got %v, want about half of %v", dHi, dEq)
	}

	if d := GeodesicDistance(36.58, -121.75, 36.58, -121.75); d != 0 {
		t.Errorf("zero displacement = %v, want 0", d)
	}
}

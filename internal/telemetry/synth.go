package telemetry

import "math"

// Synthetic session generation for demo mode and tests. The circuit is
// built from a parametric heading profile: a handful of corner arcs over
// an otherwise straight path, closed into a loop. Speed comes from a
// curvature-limited profile with forward/backward acceleration passes,
// which is how real lap-time simulators shape a speed trace.

const (
	synthSampleStep = 5.0   // meters between samples
	synthMaxSpeed   = 75.0  // m/s on the straights
	synthMaxLatG    = 1.6   // cornering limit
	synthMaxAccel   = 5.0   // m/s^2 traction-limited
	synthMaxBrake   = 11.0  // m/s^2
	synthCenterLat  = 36.5841
	synthCenterLon  = -121.7530
	earthRadiusM    = 6371000.0
)

// synthCorner is one designed corner arc of the demo circuit.
type synthCorner struct {
	start  float64 // meters along the lap
	length float64 // arc length
	angle  float64 // total turn in radians, +left / -right
}

// demoCorners closes a loop: turn angles sum to 2π.
var demoCorners = []synthCorner{
	{start: 250, length: 120, angle: 1.9},
	{start: 600, length: 80, angle: -0.8},
	{start: 850, length: 150, angle: 2.2},
	{start: 1250, length: 90, angle: 1.1},
	{start: 1600, length: 130, angle: -1.4},
	{start: 1950, length: 160, angle: 3.283},
}

const demoTrackLength = 2400.0

// DemoSession builds a two-lap synthetic session on a closed circuit,
// with corner zones and grades, so the dashboard can run without input
// data.
func DemoSession() *Session {
	ref := synthLap(1, 0)
	// Lap 2 carries slightly higher corner speeds and later braking, so
	// the delta trace has structure.
	cmp := synthLap(2, 0.045)

	session := &Session{
		Track:  "Demo Circuit",
		Driver: "demo",
		Laps:   []*Series{ref, cmp},
	}

	for i, sc := range demoCorners {
		entry := sc.start - 40
		exit := sc.start + sc.length + 30
		apex := sc.start + sc.length*0.55
		session.Corners = append(session.Corners, Corner{
			Number:        i + 1,
			EntryDistance: entry,
			ApexDistance:  apex,
			ExitDistance:  exit,
			MinSpeed:      ValueAt(ref.Distance, ref.Speed, apex),
			BrakePoint:    entry - 25,
			PeakBrakeG:    synthMaxBrake / 9.81,
			Apex:          ApexMid,
		})
	}

	// Deterministic grades cycling through the palette, one sub-grade
	// absent per corner so the worst-of-N exclusion path is exercised.
	letters := []Grade{"A", "B", "C", "D", "F"}
	for i, c := range session.Corners {
		cg := CornerGrade{
			Corner:   c.Number,
			Braking:  letters[i%len(letters)],
			MinSpeed: letters[(i+1)%len(letters)],
			Throttle: letters[(i+2)%len(letters)],
		}
		if i%2 == 0 {
			cg.TrailBraking = letters[(i+3)%len(letters)]
		}
		session.Grades = append(session.Grades, cg)
	}

	return session
}

// synthLap generates one lap of the demo circuit. skill raises curvature
// speed limits, making the lap faster through corners.
func synthLap(lapNumber int, skill float64) *Series {
	n := int(demoTrackLength/synthSampleStep) + 1

	dist := make([]float64, n)
	curvature := make([]float64, n)
	for i := 0; i < n; i++ {
		s := float64(i) * synthSampleStep
		dist[i] = s
		for _, sc := range demoCorners {
			if s >= sc.start && s <= sc.start+sc.length {
				curvature[i] += sc.angle / sc.length
			}
		}
	}

	speed := speedProfile(curvature, skill)

	lap := &Series{
		LapNumber:     lapNumber,
		Distance:      dist,
		Speed:         speed,
		LateralG:      make([]float64, n),
		LongitudinalG: make([]float64, n),
		Latitude:      make([]float64, n),
		Longitude:     make([]float64, n),
		Heading:       make([]float64, n),
		Brake:         make([]float64, n),
		Throttle:      make([]float64, n),
		Altitude:      make([]float64, n),
	}

	// Integrate heading into local x/y, then place on the globe around
	// the demo center with the inverse of the equirectangular mapping.
	heading := 0.0
	x, y := 0.0, 0.0
	cosLat := math.Cos(synthCenterLat * math.Pi / 180)
	for i := 0; i < n; i++ {
		lap.Heading[i] = math.Mod(heading*180/math.Pi+360, 360)
		lap.Latitude[i] = synthCenterLat + (y/earthRadiusM)*180/math.Pi
		lap.Longitude[i] = synthCenterLon + (x/(earthRadiusM*cosLat))*180/math.Pi
		lap.Altitude[i] = 18*math.Sin(dist[i]/demoTrackLength*2*math.Pi) +
			7*math.Sin(dist[i]/demoTrackLength*6*math.Pi)

		lap.LateralG[i] = speed[i] * speed[i] * curvature[i] / 9.81

		if i+1 < n {
			dv := speed[i+1] - speed[i]
			dt := synthSampleStep / math.Max(speed[i], minSpeed)
			accel := dv / dt
			lap.LongitudinalG[i] = accel / 9.81
			if accel < -0.5 {
				lap.Brake[i] = math.Min(1, -accel/synthMaxBrake)
			} else if accel > 0.2 || speed[i] > synthMaxSpeed*0.95 {
				lap.Throttle[i] = math.Min(1, 0.3+accel/synthMaxAccel)
			}

			heading += curvature[i] * synthSampleStep
			x += math.Cos(heading) * synthSampleStep
			y += math.Sin(heading) * synthSampleStep
		}
	}

	times := ElapsedTimes(lap.Distance, lap.Speed)
	lap.LapTime = times[len(times)-1]
	return lap
}

// speedProfile converts curvature into an achievable speed trace:
// curvature caps lateral acceleration, then forward and backward passes
// enforce traction and braking limits.
func speedProfile(curvature []float64, skill float64) []float64 {
	n := len(curvature)
	speed := make([]float64, n)

	limit := synthMaxLatG * 9.81 * (1 + skill)
	for i, k := range curvature {
		if math.Abs(k) < 1e-6 {
			speed[i] = synthMaxSpeed
			continue
		}
		v := math.Sqrt(limit / math.Abs(k))
		if v > synthMaxSpeed {
			v = synthMaxSpeed
		}
		speed[i] = v
	}

	// Forward pass: acceleration limit out of corners.
	for i := 1; i < n; i++ {
		vMax := math.Sqrt(speed[i-1]*speed[i-1] + 2*synthMaxAccel*synthSampleStep)
		if speed[i] > vMax {
			speed[i] = vMax
		}
	}
	// Backward pass: braking limit into corners.
	for i := n - 2; i >= 0; i-- {
		vMax := math.Sqrt(speed[i+1]*speed[i+1] + 2*synthMaxBrake*synthSampleStep)
		if speed[i] > vMax {
			speed[i] = vMax
		}
	}

	return speed
}

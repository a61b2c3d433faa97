// World generation using layered simplex noise.
// Generates elevation, rainfall, and temperature maps, then derives terrain and features.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius (~22 for ~2000 hexes); north–south half-height when Width > 0
	Width       int     // East–west wrap width; 0 generates a hexagonal island world
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	HillLvl     float64 // Elevation threshold for hills (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountain ranges (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      22,
		Seed:        0,
		SeaLevel:    0.25,
		HillLvl:     0.58,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      5,
		Seed:        42,
		SeaLevel:    0.30,
		HillLvl:     0.60,
		MountainLvl: 0.75,
	}
}

// Generate creates a complete world map with terrain and features.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	m := NewMap(cfg.Radius)
	m.Width = cfg.Width
	// A radius-0 world is the single origin hex; keep the falloff ratios finite.
	span := math.Max(1, float64(cfg.Radius))

	for _, coord := range generationCoords(cfg) {
		x, y := sampleSpace(coord, cfg)

		elev := octaveNoise(elevNoise, x, y, cfg.Width, 4, 0.08, 0.5)
		rain := octaveNoise(rainNoise, x, y, cfg.Width, 3, 0.06, 0.5)
		temp := octaveNoise(tempNoise, x, y, cfg.Width, 3, 0.05, 0.5)

		// Island worlds fall off into ocean at the rim; cylinders only at the poles.
		var edge float64
		if cfg.Width > 0 {
			edge = math.Abs(y) / span
		} else {
			edge = math.Sqrt(x*x+y*y) / span
		}
		falloff := 1.0 - math.Pow(edge, 3.5)
		if falloff < 0 {
			falloff = 0
		}
		elev *= falloff

		// Temperature decreases with elevation and distance from equator.
		latitude := math.Abs(y) / span
		temp = temp*0.6 + (1.0-latitude)*0.3 + (1.0-elev)*0.1

		terrain := deriveTerrain(elev, rain, temp, cfg)
		m.Set(&Hex{
			Coord:       coord,
			Terrain:     terrain,
			Features:    deriveFeatures(terrain, rain, temp),
			Elevation:   elev,
			Rainfall:    rain,
			Temperature: temp,
		})
	}

	// Post-pass: mark coastal hexes (land hexes adjacent to ocean).
	markCoastalHexes(m)

	// Post-pass: place rivers flowing from high elevation to coast.
	placeRivers(m, seed)

	return m
}

// generationCoords lists the coordinates a world of this shape contains.
func generationCoords(cfg GenConfig) []HexCoord {
	var coords []HexCoord
	if cfg.Width > 0 {
		half := cfg.Width / 2
		for q := -half; q < cfg.Width-half; q++ {
			for r := -cfg.Radius; r <= cfg.Radius; r++ {
				coords = append(coords, HexCoord{Q: q, R: r})
			}
		}
		return coords
	}
	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			// Cube coordinate constraint: max(|q|,|r|,|s|) <= radius
			if max(abs(q), abs(r), abs(-q-r)) > cfg.Radius {
				continue
			}
			coords = append(coords, HexCoord{Q: q, R: r})
		}
	}
	return coords
}

// sampleSpace converts a hex to continuous space for noise sampling,
// with unit spacing between neighboring centers.
// Hex axial → cartesian (flat-top): x = q * sqrt(3)/2, y = q/2 + r
func sampleSpace(coord HexCoord, cfg GenConfig) (float64, float64) {
	x := float64(coord.Q) * math.Sqrt(3) / 2
	y := float64(coord.Q)/2 + float64(coord.R)
	if cfg.Width > 0 {
		// On a cylinder the latitude ignores the q skew so the seam lines up.
		y = float64(coord.R)
	}
	return x, y
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		return TerrainOcean
	}
	if elev > cfg.MountainLvl {
		return TerrainMountainRange
	}
	if temp < 0.15 {
		return TerrainIce
	}
	if temp < 0.3 {
		return TerrainTundra
	}
	if elev > cfg.HillLvl {
		return TerrainHills
	}
	if rain < 0.25 && temp > 0.55 {
		return TerrainDesert
	}
	if rain > 0.55 && elev < 0.45 {
		return TerrainMeadow
	}
	return TerrainPlains
}

// deriveFeatures picks vegetation overlays from climate.
func deriveFeatures(terrain Terrain, rain, temp float64) []Feature {
	switch terrain {
	case TerrainPlains, TerrainMeadow:
		if rain > 0.65 && temp > 0.7 {
			return []Feature{FeatureJungle}
		}
		if rain > 0.5 && temp > 0.35 {
			return []Feature{FeatureForest}
		}
	case TerrainHills:
		if rain > 0.5 && temp < 0.4 {
			return []Feature{FeatureBorealForest}
		}
		if rain > 0.5 {
			return []Feature{FeatureForest}
		}
	case TerrainTundra:
		if rain > 0.45 {
			return []Feature{FeatureBorealForest}
		}
	}
	return nil
}

// markCoastalHexes converts low land hexes adjacent to ocean into coast terrain.
func markCoastalHexes(m *Map) {
	var toMark []HexCoord

	for coord, hex := range m.Hexes {
		if hex.Terrain == TerrainOcean {
			continue
		}
		for _, neighbor := range m.Neighbors(coord) {
			nh := m.Get(neighbor)
			if nh != nil && nh.Terrain == TerrainOcean {
				toMark = append(toMark, coord)
				break
			}
		}
	}

	for _, coord := range toMark {
		hex := m.Get(coord)
		switch hex.Terrain {
		case TerrainPlains, TerrainMeadow, TerrainDesert:
			if hex.Elevation < 0.5 {
				hex.Terrain = TerrainCoast
			}
		}
	}
}

// placeRivers traces paths from high elevation to the sea, tagging hexes with rivers.
func placeRivers(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	// Find highland hexes as river sources, in a stable order so a seed
	// always yields the same rivers.
	var sources []HexCoord
	for _, coord := range generationCoords(GenConfig{Radius: m.Radius, Width: m.Width}) {
		hex := m.Get(coord)
		if hex != nil && hex.Elevation > 0.65 && hex.Terrain != TerrainOcean {
			sources = append(sources, coord)
		}
	}

	numRivers := len(sources) / 8
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > 10 {
		numRivers = 10
	}

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for _, start := range sources {
		traceRiver(m, start)
	}
}

// traceRiver follows the steepest descent from a source hex until reaching
// ocean or running out of downhill path.
func traceRiver(m *Map, start HexCoord) {
	current := start
	visited := make(map[HexCoord]bool)
	maxSteps := 50

	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		hex := m.Get(current)
		if hex == nil || hex.Terrain == TerrainOcean {
			break
		}

		// Peaks and frozen ground stay dry.
		switch hex.Terrain {
		case TerrainMountainRange, TerrainIce:
		default:
			if !hex.HasFeature(FeatureRiver) {
				hex.Features = append(hex.Features, FeatureRiver)
			}
		}

		var bestNeighbor *HexCoord
		bestElev := hex.Elevation

		for _, nc := range m.Neighbors(current) {
			if visited[nc] {
				continue
			}
			nh := m.Get(nc)
			if nh == nil {
				continue
			}
			if nh.Elevation < bestElev {
				bestElev = nh.Elevation
				c := nc
				bestNeighbor = &c
			}
		}

		if bestNeighbor == nil {
			break
		}
		current = *bestNeighbor
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// When width > 0 the x axis is sampled around a circle so the noise is
// seamless across the wrap.
func octaveNoise(noise opensimplex.Noise, x, y float64, width, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		if width > 0 {
			circumference := float64(width) * math.Sqrt(3) / 2
			radius := circumference / (2 * math.Pi)
			angle := x / circumference * 2 * math.Pi
			total += noise.Eval3(radius*math.Cos(angle)*frequency, radius*math.Sin(angle)*frequency, y*frequency) * amplitude
		} else {
			total += noise.Eval2(x*frequency, y*frequency) * amplitude
		}
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, hex := range m.Hexes {
		counts[hex.Terrain]++
	}
	return counts
}

package testkit

import (
	"math"
	"math/rand"

	"paxclean/domain/table"
)

// PassengerGeneratorConfig configures the synthetic passenger generator
type PassengerGeneratorConfig struct {
	Rows           int     `json:"rows"`
	MissingAgeRate float64 `json:"missing_age_rate"`
	MissingSexRate float64 `json:"missing_sex_rate"`
	TextNoiseRate  float64 `json:"text_noise_rate"`
	ZeroFareRate   float64 `json:"zero_fare_rate"`
	OutlierRate    float64 `json:"outlier_rate"`
	Seed           int64   `json:"seed"`
}

// DefaultPassengerConfig returns defaults resembling the 1912 manifest
func DefaultPassengerConfig() PassengerGeneratorConfig {
	return PassengerGeneratorConfig{
		Rows:           887,
		MissingAgeRate: 0.2,
		MissingSexRate: 0.01,
		TextNoiseRate:  0.01,
		ZeroFareRate:   0.017,
		OutlierRate:    0.005,
		Seed:           42,
	}
}

// PassengerDataGenerator generates a passenger table with realistic
// class, fare and survival structure plus controlled defects.
type PassengerDataGenerator struct {
	config PassengerGeneratorConfig
	rng    *rand.Rand
}

// NewPassengerDataGenerator creates a new passenger data generator
func NewPassengerDataGenerator(config PassengerGeneratorConfig) *PassengerDataGenerator {
	return &PassengerDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// class-conditional fare parameters (log-normal)
var fareParams = map[int]struct{ mu, sigma float64 }{
	1: {mu: 4.1, sigma: 0.7},
	2: {mu: 2.9, sigma: 0.4},
	3: {mu: 2.4, sigma: 0.45},
}

// Generate builds the passenger table
func (g *PassengerDataGenerator) Generate() (*table.Table, error) {
	n := g.config.Rows
	cols := PassengerColumns{
		Survived: make([]float64, n),
		Pclass:   make([]float64, n),
		Sex:      make([]string, n),
		SexValid: make([]bool, n),
		Age:      make([]float64, n),
		SibSp:    make([]float64, n),
		ParCh:    make([]float64, n),
		Fare:     make([]float64, n),
	}

	for i := 0; i < n; i++ {
		class := g.pickClass()
		male := g.rng.Float64() < 0.65
		age := g.age(class)

		cols.Pclass[i] = float64(class)
		cols.SibSp[i] = g.relatives(0.55)
		cols.ParCh[i] = g.relatives(0.4)
		cols.Fare[i] = g.fare(class)
		cols.Age[i] = age
		cols.Sex[i], cols.SexValid[i] = g.sex(male)
		cols.Survived[i] = g.survived(class, male, age)

		// Defects are injected after survival is drawn so the latent age
		// still drives the outcome.
		if g.rng.Float64() < g.config.MissingAgeRate {
			cols.Age[i] = math.NaN()
		} else if g.rng.Float64() < g.config.OutlierRate {
			cols.Age[i] = age * 10
		}
		if g.rng.Float64() < g.config.ZeroFareRate {
			cols.Fare[i] = 0
		}
	}

	return cols.Table()
}

func (g *PassengerDataGenerator) pickClass() int {
	r := g.rng.Float64()
	switch {
	case r < 0.24:
		return 1
	case r < 0.45:
		return 2
	default:
		return 3
	}
}

func (g *PassengerDataGenerator) age(class int) float64 {
	mean := map[int]float64{1: 38, 2: 30, 3: 25}[class]
	age := mean + g.rng.NormFloat64()*13
	if age < 0.42 {
		age = 0.42 + g.rng.Float64()*5
	}
	if age > 80 {
		age = 80
	}
	return math.Round(age*2) / 2
}

// relatives draws a small count, geometric-like with continuation p
func (g *PassengerDataGenerator) relatives(p float64) float64 {
	n := 0
	for n < 8 && g.rng.Float64() < p*math.Pow(0.6, float64(n)) {
		n++
	}
	return float64(n)
}

func (g *PassengerDataGenerator) fare(class int) float64 {
	fp := fareParams[class]
	fare := math.Exp(fp.mu + g.rng.NormFloat64()*fp.sigma)
	return math.Round(fare*10000) / 10000
}

func (g *PassengerDataGenerator) sex(male bool) (string, bool) {
	if g.rng.Float64() < g.config.MissingSexRate {
		return "", false
	}
	if g.rng.Float64() < g.config.TextNoiseRate {
		noise := []string{"", "  ", "unknown", "N/A"}
		return noise[g.rng.Intn(len(noise))], true
	}
	if male {
		return "male", true
	}
	return "female", true
}

func (g *PassengerDataGenerator) survived(class int, male bool, age float64) float64 {
	p := map[int]float64{1: 0.62, 2: 0.47, 3: 0.24}[class]
	if male {
		p *= 0.5
	} else {
		p = math.Min(p*1.6, 0.97)
	}
	if age < 18 {
		p = math.Min(p+0.15, 0.97)
	}
	if g.rng.Float64() < p {
		return 1
	}
	return 0
}

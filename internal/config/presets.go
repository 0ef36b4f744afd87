package config

import "sort"

type PlantPreset struct {
	Description string
	Num         []float64
	Den         []float64
}

var Presets = map[string]*PlantPreset{
	"first_order": {
		Description: "unit-gain first-order lag 1/(s+1)",
		Num:         []float64{1},
		Den:         []float64{1, 1},
	},
	"second_order": {
		Description: "critically damped 1/(s+1)^2",
		Num:         []float64{1},
		Den:         []float64{1, 2, 1},
	},
	"underdamped": {
		Description: "lightly damped oscillator, zeta = 0.2",
		Num:         []float64{1},
		Den:         []float64{1, 0.4, 1},
	},
	"motor": {
		Description: "DC motor position loop 20/(s^3+32s^2+140s), Ku = 224",
		Num:         []float64{20},
		Den:         []float64{1, 32, 140, 0},
	},
	"third_order": {
		Description: "three equal lags 1/(s+1)^3",
		Num:         []float64{1},
		Den:         []float64{1, 3, 3, 1},
	},
}

func GetPreset(name string) *PlantPreset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz      int    `yaml:"tick_rate_hz"`
	SpawnPhaseTicks uint64 `yaml:"spawn_phase_ticks"`
	SpawnTerritory  int    `yaml:"spawn_territory_tiles"`
	StartingGold    int64  `yaml:"starting_gold"`

	Weapons   Weapons   `yaml:"weapons"`
	Diplomacy Diplomacy `yaml:"diplomacy"`
}

type Weapons struct {
	MissileCost      int64   `yaml:"missile_cost"`
	MirvCost         int64   `yaml:"mirv_cost"`
	SiloCost         int64   `yaml:"silo_cost"`
	MissileSpeed     float64 `yaml:"missile_speed_tiles_per_tick"`
	WarheadSpeed     float64 `yaml:"warhead_speed_tiles_per_tick"`
	MissileInner     int     `yaml:"missile_inner_radius"`
	MissileOuter     int     `yaml:"missile_outer_radius"`
	WarheadInner     int     `yaml:"warhead_inner_radius"`
	WarheadOuter     int     `yaml:"warhead_outer_radius"`
	RimProbability   float64 `yaml:"blast_rim_probability"`
	InterceptRange   int     `yaml:"silo_intercept_range"`
	InterceptChance  float64 `yaml:"silo_intercept_chance"`
	MirvWarheads     int     `yaml:"mirv_warheads"`
	MirvRadius       int     `yaml:"mirv_dispersal_radius"`
	MirvMinSpread    int     `yaml:"mirv_min_spread"`
	MirvStaggerTicks uint64  `yaml:"mirv_stagger_ticks"`
	MirvSeparation   float64 `yaml:"mirv_separation_fraction"`
}

type Diplomacy struct {
	AllianceDurationTicks  uint64 `yaml:"alliance_duration_ticks"`
	AllianceExtensionTicks uint64 `yaml:"alliance_extension_ticks"`
	RequestTTLTicks        uint64 `yaml:"request_ttl_ticks"`
	AcceptBonus            int    `yaml:"accept_bonus"`
	RejectMalus            int    `yaml:"reject_malus"`
	BreakPenalty           int    `yaml:"break_penalty"`
	BystanderPenalty       int    `yaml:"bystander_penalty"`
	BetrayalPenalty        int    `yaml:"betrayal_penalty"`
	BetrayalTileThreshold  int    `yaml:"betrayal_tile_threshold"`
	EmbargoMalus           int    `yaml:"embargo_malus"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Default returns the tuning used when no tuning.yaml is supplied (tests, replay).
func Default() Tuning {
	return Tuning{
		TickRateHz:      10,
		SpawnPhaseTicks: 100,
		SpawnTerritory:  200,
		StartingGold:    1_000_000,
		Weapons: Weapons{
			MissileCost:      250_000,
			MirvCost:         750_000,
			SiloCost:         100_000,
			MissileSpeed:     4,
			WarheadSpeed:     6,
			MissileInner:     12,
			MissileOuter:     18,
			WarheadInner:     4,
			WarheadOuter:     6,
			RimProbability:   0.5,
			InterceptRange:   30,
			InterceptChance:  0.35,
			MirvWarheads:     350,
			MirvRadius:       120,
			MirvMinSpread:    55,
			MirvStaggerTicks: 2,
			MirvSeparation:   0.75,
		},
		Diplomacy: Diplomacy{
			AllianceDurationTicks:  6000,
			AllianceExtensionTicks: 6000,
			RequestTTLTicks:        600,
			AcceptBonus:            50,
			RejectMalus:            20,
			BreakPenalty:           200,
			BystanderPenalty:       25,
			BetrayalPenalty:        100,
			BetrayalTileThreshold:  100,
			EmbargoMalus:           10,
		},
	}
}

package enemy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/siege/internal/game/geom"
)

// Archetype defines the base stats of one enemy type, loaded from YAML.
type Archetype struct {
	Type     Type     `yaml:"type"`
	Health   float64  `yaml:"health"`
	Speed    float64  `yaml:"speed"`
	Damage   float64  `yaml:"damage"`
	Gold     int      `yaml:"gold"`
	Size     float64  `yaml:"size"`
	Special  bool     `yaml:"special"`
	Behavior Behavior `yaml:"behavior"`
}

// Validate checks that the archetype satisfies basic invariants.
//
// Postcondition: Returns nil iff Type is known, Health > 0, Speed >= 0,
// Damage >= 0, Gold >= 0, and Behavior is known.
func (a *Archetype) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("enemy archetype: unknown type %q", a.Type)
	}
	if a.Health <= 0 {
		return fmt.Errorf("enemy archetype %q: health must be > 0", a.Type)
	}
	if a.Speed < 0 || a.Damage < 0 || a.Gold < 0 {
		return fmt.Errorf("enemy archetype %q: speed, damage and gold must be >= 0", a.Type)
	}
	if a.Behavior != BehaviorNone && a.Behavior != BehaviorGhost {
		return fmt.Errorf("enemy archetype %q: unknown behavior %q", a.Type, a.Behavior)
	}
	return nil
}

// BossArchetype defines the base stats and phase layout of one boss tier.
type BossArchetype struct {
	Type       BossType  `yaml:"type"`
	Health     float64   `yaml:"health"`
	Speed      float64   `yaml:"speed"`
	Damage     float64   `yaml:"damage"`
	Gold       int       `yaml:"gold"`
	Size       float64   `yaml:"size"`
	MaxPhases  int       `yaml:"max_phases"`
	Thresholds []float64 `yaml:"thresholds"`
}

// Validate checks that the boss archetype satisfies basic invariants.
//
// Postcondition: Returns nil iff Type is known, Health > 0, MaxPhases >= 1,
// len(Thresholds) >= MaxPhases-1, and Thresholds are strictly descending in (0, 1).
func (b *BossArchetype) Validate() error {
	switch b.Type {
	case BossMini, BossMajor, BossLegendary:
	default:
		return fmt.Errorf("boss archetype: unknown type %q", b.Type)
	}
	if b.Health <= 0 {
		return fmt.Errorf("boss archetype %q: health must be > 0", b.Type)
	}
	if b.MaxPhases < 1 {
		return fmt.Errorf("boss archetype %q: max_phases must be >= 1", b.Type)
	}
	if len(b.Thresholds) < b.MaxPhases-1 {
		return fmt.Errorf("boss archetype %q: need %d thresholds for %d phases, got %d",
			b.Type, b.MaxPhases-1, b.MaxPhases, len(b.Thresholds))
	}
	prev := 1.0
	for i, th := range b.Thresholds {
		if th <= 0 || th >= prev {
			return fmt.Errorf("boss archetype %q: thresholds must be strictly descending in (0, 1); threshold[%d]=%g", b.Type, i, th)
		}
		prev = th
	}
	return nil
}

// Catalog is the full set of enemy and boss archetypes.
type Catalog struct {
	Enemies []Archetype     `yaml:"enemies"`
	Bosses  []BossArchetype `yaml:"bosses"`
}

// Validate checks every archetype and requires a basic archetype to exist.
func (c *Catalog) Validate() error {
	seen := make(map[Type]bool)
	for i := range c.Enemies {
		if err := c.Enemies[i].Validate(); err != nil {
			return err
		}
		if seen[c.Enemies[i].Type] {
			return fmt.Errorf("enemy catalog: duplicate type %q", c.Enemies[i].Type)
		}
		seen[c.Enemies[i].Type] = true
	}
	if !seen[TypeBasic] {
		return fmt.Errorf("enemy catalog: a %q archetype is required", TypeBasic)
	}
	for i := range c.Bosses {
		if err := c.Bosses[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Archetype returns the archetype for t, falling back to the basic archetype.
//
// Precondition: c has passed Validate.
func (c *Catalog) Archetype(t Type) Archetype {
	var basic Archetype
	for _, a := range c.Enemies {
		if a.Type == t {
			return a
		}
		if a.Type == TypeBasic {
			basic = a
		}
	}
	return basic
}

// Boss returns the boss archetype for bt.
//
// Postcondition: Returns (archetype, true) if found, or (zero, false) otherwise.
func (c *Catalog) Boss(bt BossType) (BossArchetype, bool) {
	for _, b := range c.Bosses {
		if b.Type == bt {
			return b, true
		}
	}
	return BossArchetype{}, false
}

// LoadCatalogFromBytes parses and validates a catalog from raw YAML bytes.
//
// Postcondition: Returns a validated *Catalog, or an error.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing enemy catalog YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog reads and validates the catalog at path.
//
// Precondition: path must be a readable YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading enemy catalog %q: %w", path, err)
	}
	c, err := LoadCatalogFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return c, nil
}

// DefaultCatalog returns the built-in archetypes.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Enemies: []Archetype{
			{Type: TypeBasic, Health: 100, Speed: 50, Damage: 10, Gold: 10, Size: 10},
			{Type: TypeScout, Health: 60, Speed: 90, Damage: 6, Gold: 12, Size: 8},
			{Type: TypeTank, Health: 400, Speed: 30, Damage: 25, Gold: 30, Size: 16},
			{Type: TypeGhost, Health: 80, Speed: 60, Damage: 12, Gold: 20, Size: 10, Special: true, Behavior: BehaviorGhost},
			{Type: TypeArmored, Health: 250, Speed: 40, Damage: 15, Gold: 25, Size: 14, Special: true},
			{Type: TypeSwarm, Health: 30, Speed: 70, Damage: 4, Gold: 3, Size: 6},
			{Type: TypeHealer, Health: 120, Speed: 45, Damage: 5, Gold: 22, Size: 11, Special: true},
		},
		Bosses: []BossArchetype{
			{Type: BossMini, Health: 1500, Speed: 35, Damage: 40, Gold: 150, Size: 22, MaxPhases: 2, Thresholds: []float64{0.5}},
			{Type: BossMajor, Health: 4000, Speed: 30, Damage: 60, Gold: 400, Size: 28, MaxPhases: 3, Thresholds: []float64{0.66, 0.33}},
			{Type: BossLegendary, Health: 10000, Speed: 25, Damage: 100, Gold: 1000, Size: 36, MaxPhases: 4, Thresholds: []float64{0.75, 0.5, 0.25}},
		},
	}
}

// NewEnemy builds an unregistered enemy at pos from archetype a.
//
// Postcondition: Health == MaxHealth == a.Health; ID and Seq are unset.
func NewEnemy(a Archetype, pos geom.Vec) *Enemy {
	return &Enemy{
		Type:      a.Type,
		Position:  pos,
		Size:      a.Size,
		Speed:     a.Speed,
		Health:    a.Health,
		MaxHealth: a.Health,
		Damage:    a.Damage,
		GoldValue: a.Gold,
		Special:   a.Special,
		Behavior:  a.Behavior,
	}
}

// NewBoss builds an unregistered boss enemy at pos from archetype b. Bosses
// carry the basic type tag and are always special.
//
// Postcondition: Boss.Phase == 1; Boss.Thresholds is a private copy.
func NewBoss(b BossArchetype, pos geom.Vec) *Enemy {
	return &Enemy{
		Type:      TypeBasic,
		Position:  pos,
		Size:      b.Size,
		Speed:     b.Speed,
		Health:    b.Health,
		MaxHealth: b.Health,
		Damage:    b.Damage,
		GoldValue: b.Gold,
		Special:   true,
		Boss: &Boss{
			Type:       b.Type,
			Phase:      1,
			MaxPhases:  b.MaxPhases,
			Thresholds: append([]float64(nil), b.Thresholds...),
		},
	}
}

package category

import "fmt"

// Category partitions a folder subtree into a named document area. The empty
// value is never stored; an uncategorized folder carries NULL instead, which
// the application reads as the main document area.
type Category string

const (
	LifelineElectrical            Category = "lifeline_electrical"
	LifelineGas                   Category = "lifeline_gas"
	LifelineWater                 Category = "lifeline_water"
	LifelineElevator              Category = "lifeline_elevator"
	LifelineHvacLighting          Category = "lifeline_hvac_lighting"
	MaintenanceExterior           Category = "maintenance_exterior"
	MaintenanceInterior           Category = "maintenance_interior"
	MaintenanceSummerCondensation Category = "maintenance_summer_condensation"
	MaintenanceOther              Category = "maintenance_other"
)

var all = []Category{
	LifelineElectrical,
	LifelineGas,
	LifelineWater,
	LifelineElevator,
	LifelineHvacLighting,
	MaintenanceExterior,
	MaintenanceInterior,
	MaintenanceSummerCondensation,
	MaintenanceOther,
}

func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

func (c Category) Valid() bool {
	for _, known := range all {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func Parse(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

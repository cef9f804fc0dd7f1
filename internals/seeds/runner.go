package seeds

import (
	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/seeds/churches"

	"gorm.io/gorm"
)

// RunAllSeeds loads development fixtures. Enabled with SEED_DEMO=true; never in production.
func RunAllSeeds(db *gorm.DB) {
	//* Demo church
	seed, err := churches.ParseDemoSeed(churches.DemoData)
	if err != nil {
		configs.Log.Errorf("❌ demo seed invalid: %v", err)
		return
	}
	if err := churches.SeedDemoChurch(db, seed); err != nil {
		configs.Log.Errorf("❌ demo seed failed: %v", err)
	}
}

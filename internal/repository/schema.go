package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// slotExclusionStatements installs the bookings overlap guard. AutoMigrate
// derives columns and plain indexes from struct tags only, so any schema
// built that way (dev auto-migrate, test databases) needs this applied on
// top; the SQL migrations create the same constraint everywhere else. Each
// statement is idempotent.
var slotExclusionStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
	BEGIN
	    CREATE TYPE textrange AS RANGE (subtype = text);
	EXCEPTION WHEN duplicate_object THEN
	    NULL;
	END $$`,
	`DO $$
	BEGIN
	    ALTER TABLE bookings ADD CONSTRAINT bookings_slot_no_overlap
	        EXCLUDE USING gist (
	            service_id WITH =,
	            booking_date WITH =,
	            textrange(start_time, end_time) WITH &&
	        )
	        WHERE (status IN ('pending', 'confirmed'));
	EXCEPTION WHEN duplicate_object OR duplicate_table THEN
	    NULL;
	END $$`,
}

// EnsureSlotExclusionConstraint applies the overlap exclusion constraint to
// the bookings table. Without it two racing creations for the same window
// can both commit; Save relies on the violation to surface the race loser
// as SlotUnavailable.
func EnsureSlotExclusionConstraint(db *gorm.DB) error {
	for _, stmt := range slotExclusionStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to install slot exclusion constraint: %w", err)
		}
	}
	return nil
}

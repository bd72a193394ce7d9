package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// RealtimeChannel is the LISTEN/NOTIFY channel the notifications trigger publishes on.
const RealtimeChannel = "realtime_notifications"

func Connect(dsn string) (*gorm.DB, error) {
	return ConnectWithLogger(dsn, logger.Default.LogMode(logger.Warn))
}

func ConnectWithLogger(dsn string, l logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: l}

	if IsPostgres(dsn) {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate creates or updates the tables for the given models.
func Migrate(db *gorm.DB, models ...any) error {
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

// InstallRealtimeTrigger makes postgres emit a NOTIFY for every inserted notification row,
// so rows written by other producers reach the realtime hub too. The payload carries only
// the row id and recipient; pg_notify rejects payloads of 8000 bytes or more, and the
// listener loads the row itself. No-op on SQLite.
func InstallRealtimeTrigger(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(notifyFunctionSQL(RealtimeChannel)).Error; err != nil {
		return fmt.Errorf("create notify function: %w", err)
	}
	if err := db.Exec(`DROP TRIGGER IF EXISTS notifications_realtime ON notifications`).Error; err != nil {
		return fmt.Errorf("drop notify trigger: %w", err)
	}
	if err := db.Exec(`
CREATE TRIGGER notifications_realtime
AFTER INSERT ON notifications
FOR EACH ROW EXECUTE FUNCTION notify_notification_insert()`).Error; err != nil {
		return fmt.Errorf("create notify trigger: %w", err)
	}
	return nil
}

func notifyFunctionSQL(channel string) string {
	return fmt.Sprintf(`
CREATE OR REPLACE FUNCTION notify_notification_insert() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('%s', json_build_object(
		'type', 'INSERT',
		'table', TG_TABLE_NAME,
		'id', NEW.id,
		'recipient_id', NEW.recipient_id
	)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`, channel)
}

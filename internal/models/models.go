// Package models holds the GORM entities persisted by the records service.
package models

// All returns every model handled by AutoMigrate, in dependency order.
func All() []any {
	return []any{&Client{}, &Person{}}
}

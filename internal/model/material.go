package model

// Material is the read-side material master record. CRUD lives in the master
// data service; this service only validates references against it.
type Material struct {
	BaseModel
	SKU           string `db:"sku" json:"sku"`
	Name          string `db:"name" json:"name"`
	UnitOfMeasure string `db:"unit_of_measure" json:"unit_of_measure"`
	IsActive      bool   `db:"is_active" json:"is_active"`
}

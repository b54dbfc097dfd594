package domain

// KeyStore persists key records by name.
type KeyStore interface {
	Save(rec KeyRecord) error
	Load(name string) (KeyRecord, error)
	Has(name string) (bool, error)
	List() ([]KeyRecord, error)
	Delete(name string) error
}

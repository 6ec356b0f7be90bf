package model

// Table стол заведения. Справочник столов заполняется миграцией при
// разворачивании и во время работы бота не меняется.
type Table struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Fits сообщает, помещается ли компания указанного размера за стол.
func (t *Table) Fits(partySize int) bool {
	return t.Capacity >= partySize
}

package tabular

import (
	"time"
)

// Metadata describes a stored table. Revision changes every time the table is stored.
type Metadata struct {
	Revision string    `json:"revision" msgpack:"revision"`
	Columns  []Column  `json:"columns" msgpack:"columns"`
	RowCount int       `json:"rowCount" msgpack:"rowCount"`
	SavedAt  time.Time `json:"savedAt" msgpack:"savedAt"`
}

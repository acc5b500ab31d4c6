package database

// DataStore defines the unified interface for all data operations needed by the board.
// It is composed of the smaller accessor interfaces so consumers can depend on
// only what they use (e.g. ColumnReader) and tests can wrap it with fakes.
type DataStore interface {
	ColumnRepository
	ClientRepository
}

// Compile-time verification that *Repository implements DataStore
var _ DataStore = (*Repository)(nil)

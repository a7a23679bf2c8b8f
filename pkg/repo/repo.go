package repo

import (
	"gorm.io/gorm"
)

// IJournal is the persistence surface of the event journal: everything the
// worker writes when draining the feed topics.
type IJournal interface {
	OrderEvent() IOrderEvent
	Trade() ITrade
}

type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) IJournal {
	return &Journal{
		db: db,
	}
}

func (j *Journal) OrderEvent() IOrderEvent {
	return NewOrderEventSQLRepo(j.db)
}

func (j *Journal) Trade() ITrade {
	return NewTradeSQLRepo(j.db)
}

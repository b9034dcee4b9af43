package model

import "gorm.io/datatypes"

// BookedMessageModel is one sealed message persisted after booking.
type BookedMessageModel struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	TradeID       string         `gorm:"column:trade_id;index"`
	MessageType   string         `gorm:"column:message_type"`
	SenderCompID  string         `gorm:"column:sender_comp_id"`
	TargetCompID  string         `gorm:"column:target_comp_id"`
	SendingTime   string         `gorm:"column:sending_time"`
	Checksum      string         `gorm:"column:checksum;index"`
	Ref           string         `gorm:"column:ref"`
	Body          datatypes.JSON `gorm:"column:body"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
}

func (BookedMessageModel) TableName() string { return "booked_messages" }

package agent

import "time"

type AgentType struct {
	AgentTypeID   int64     `gorm:"column:agent_type_id;primaryKey"`
	AgentTypeName string    `gorm:"column:agent_type_name;uniqueIndex;not null"`
	MaximumDebt   *float64  `gorm:"column:maximum_debt"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AgentType) TableName() string {
	return "agent_types"
}

type Agent struct {
	AgentID     int64     `gorm:"column:agent_id;primaryKey"`
	AgentName   string    `gorm:"column:agent_name;not null"`
	AgentTypeID int64     `gorm:"column:agent_type_id;index;not null"`
	DebtMoney   *float64  `gorm:"column:debt_money"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Agent) TableName() string {
	return "agents"
}

type PaymentReceipt struct {
	PaymentID     int64     `gorm:"column:payment_id;primaryKey"`
	AgentID       int64     `gorm:"column:agent_id;index;not null"`
	RevenueAmount float64   `gorm:"column:revenue_amount;not null"`
	PaymentDate   time.Time `gorm:"column:payment_date;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PaymentReceipt) TableName() string {
	return "payment_receipts"
}

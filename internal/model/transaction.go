package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as income or expense.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "receita"
	TransactionTypeExpense TransactionType = "despesa"
)

// Transaction represents a single income or expense record owned by one user.
//
// Sincronizado marks device-local records not yet reconciled with a remote
// store. It is recorded on insert but no routine consumes it.
type Transaction struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Descricao    string          `json:"descricao" gorm:"size:255;not null"`
	Valor        decimal.Decimal `json:"valor" gorm:"type:decimal(20,2);not null"`
	Tipo         TransactionType `json:"tipo" gorm:"type:varchar(20);not null"`
	Categoria    string          `json:"categoria" gorm:"size:255;not null"`
	Data         time.Time       `json:"data" gorm:"not null;index"`
	UsuarioID    uint            `json:"usuario_id" gorm:"not null;index"`
	Sincronizado bool            `json:"sincronizado" gorm:"default:false"`

	// Relations
	Usuario User `json:"-" gorm:"foreignKey:UsuarioID"`
}

// TableName keeps the table name aligned with the legacy schema.
func (Transaction) TableName() string {
	return "transacoes"
}

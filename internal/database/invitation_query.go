package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/kdudkov/valentine/internal/model"
)

type InvitationQuery struct {
	Query[model.Invitation]
	ctx context.Context
	id  uint
}

func NewInvitationQuery(db *gorm.DB) *InvitationQuery {
	return &InvitationQuery{
		Query: Query[model.Invitation]{
			db:    db,
			order: "id ASC",
		},
		ctx: context.Background(),
	}
}

func (q *InvitationQuery) WithContext(ctx context.Context) *InvitationQuery {
	q.ctx = ctx
	return q
}

func (q *InvitationQuery) Id(id uint) *InvitationQuery {
	q.id = id
	return q
}

func (q *InvitationQuery) where() *gorm.DB {
	tx := q.db.WithContext(q.ctx)

	if q.id != 0 {
		tx = tx.Where("id = ?", q.id)
	}

	return tx
}

func (q *InvitationQuery) Get() ([]*model.Invitation, error) {
	return q.get(q.where().Model(&model.Invitation{}))
}

func (q *InvitationQuery) One() (*model.Invitation, error) {
	return q.one(q.where().Model(&model.Invitation{}))
}

package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func portfolioDoc(id primitive.ObjectID, userID string, total float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "userId", Value: userID},
		{Key: "totalValue", Value: total},
		{Key: "cashBalance", Value: total * 0.15},
		{Key: "positions", Value: bson.A{
			bson.D{{Key: "symbol", Value: "TCS.NS"}, {Key: "quantity", Value: 50.0}, {Key: "averagePrice", Value: 3500.0}, {Key: "currentPrice", Value: 3800.0}},
		}},
	}
}

func TestPortfolioRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "portfolio_analytics." + CollectionName

	mt.Run("find existing", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, portfolioDoc(id, "demo-user", 1000)))

		repo := NewPortfolioRepository(mt.DB, nil)
		p, err := repo.FindByUser(context.Background(), "demo-user")
		require.NoError(mt, err)
		assert.Equal(mt, id, p.ID)
		assert.Equal(mt, 1000.0, p.TotalValue)
		require.Len(mt, p.Positions, 1)
		assert.Equal(mt, "TCS.NS", p.Positions[0].Symbol)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		repo := NewPortfolioRepository(mt.DB, nil)
		_, err := repo.FindByUser(context.Background(), "demo-user")
		assert.ErrorIs(mt, err, domain.ErrPortfolioNotFound)
	})

	mt.Run("create if absent returns existing", func(mt *mtest.T) {
		existing := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: portfolioDoc(existing, "demo-user", 500)},
		))

		repo := NewPortfolioRepository(mt.DB, nil)
		p, created, err := repo.CreateIfAbsent(context.Background(), &domain.Portfolio{UserID: "demo-user", TotalValue: 999})
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, existing, p.ID)
		assert.Equal(mt, 500.0, p.TotalValue)
	})

	mt.Run("duplicate key rereads", func(mt *mtest.T) {
		existing := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, portfolioDoc(existing, "demo-user", 700)),
		)

		repo := NewPortfolioRepository(mt.DB, nil)
		p, created, err := repo.CreateIfAbsent(context.Background(), &domain.Portfolio{UserID: "demo-user"})
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, existing, p.ID)
	})

	mt.Run("replace missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		repo := NewPortfolioRepository(mt.DB, nil)
		_, err := repo.Replace(context.Background(), &domain.Portfolio{UserID: "demo-user"})
		assert.ErrorIs(mt, err, domain.ErrPortfolioNotFound)
	})

	mt.Run("replace existing", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, portfolioDoc(id, "demo-user", 100)),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: portfolioDoc(id, "demo-user", 250)}),
		)

		repo := NewPortfolioRepository(mt.DB, nil)
		p, err := repo.Replace(context.Background(), &domain.Portfolio{UserID: "demo-user", TotalValue: 250})
		require.NoError(mt, err)
		assert.Equal(mt, id, p.ID)
		assert.Equal(mt, 250.0, p.TotalValue)
	})
}

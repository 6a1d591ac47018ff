package service

import (
	"context"
	"testing"

	"fwf/internal/domain"
	"fwf/internal/repository"
	"fwf/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellTicketCreditsQuizPoints(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seller := testutil.CreateMember(t, h.db, "FWF-000001", "")

	ticket, err := h.ticket.Sell(ctx, seller.ID, TicketSale{
		BuyerName: " Kiran ", BuyerEmail: "Kiran@Example.org", TicketPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.True(t, ticket.PointsEarned.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "Kiran", ticket.BuyerName)
	assert.Equal(t, "kiran@example.org", ticket.BuyerEmail)
	assert.NotEmpty(t, ticket.Token)

	rows := testutil.LedgerRows(t, h.db, seller.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.LedgerQuiz, rows[0].Type)
	assert.True(t, rows[0].Points.Equal(decimal.NewFromInt(1)))

	w, err := h.wallet.Get(ctx, seller.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromQuiz.Equal(decimal.NewFromInt(1)))
}

func TestSellTicketDefaultsPriceAndKeepsDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seller := testutil.CreateMember(t, h.db, "FWF-000001", "")
	sale := TicketSale{BuyerName: "Kiran"}

	first, err := h.ticket.Sell(ctx, seller.ID, sale)
	require.NoError(t, err)
	assert.True(t, first.TicketPrice.Equal(decimal.NewFromInt(100)))
	second, err := h.ticket.Sell(ctx, seller.ID, sale)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	list, total, err := h.ticket.List(ctx, seller.ID, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	w, err := h.wallet.Get(ctx, seller.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsBalance.Equal(decimal.NewFromInt(2)))
}
